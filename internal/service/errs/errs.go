package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an order or product does not exist.
var ErrNotFound = errors.New("not found")

// ErrOrderNumberConflict is returned when a generated order number collides
// with an existing one at insert time.
var ErrOrderNumberConflict = errors.New("order number already exists")

// ValidationError reports a malformed or incomplete client payload.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Detail
}

// NewValidation builds a ValidationError with a formatted detail message.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidTransitionError reports a rejected order status transition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var te *InvalidTransitionError
	return errors.As(err, &te)
}

// ChannelError wraps a messaging-platform delivery failure. It is logged at
// the relay boundary and never propagated to the order-submission caller.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return "notification channel: " + e.Op + ": " + e.Err.Error()
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
