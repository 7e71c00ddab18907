package payment

import (
	"database/sql/driver"
	"errors"
)

// Method is the way the customer pays for an order.
type Method string

const (
	MethodCash  Method = "cash"
	MethodOther Method = "other"
)

var ErrInvalidMethod = errors.New("invalid payment method")

func (m Method) String() string {
	return string(m)
}

func (m Method) Value() (driver.Value, error) {
	return m.String(), nil
}

// Parse validates a payment method string. The empty string maps to cash,
// matching the submission default.
func Parse(s string) (Method, error) {
	switch Method(s) {
	case "":
		return MethodCash, nil
	case MethodCash, MethodOther:
		return Method(s), nil
	default:
		return "", ErrInvalidMethod
	}
}
