package order

import (
	"time"

	"github.com/tokyogo/backend/internal/service/models/orderitem"
	"github.com/tokyogo/backend/internal/service/models/payment"
	"github.com/tokyogo/backend/internal/service/models/status"
)

// Order is the central entity: a customer's submission with its line-item
// snapshots, a public 6-digit order number and a lifecycle status.
type Order struct {
	ID             int64                 `json:"id"`
	TelegramUserID int64                 `json:"telegram_user_id" validate:"required"`
	Username       string                `json:"username"`
	Phone          string                `json:"phone" validate:"required"`
	Address        string                `json:"address" validate:"required"`
	Items          []orderitem.OrderItem `json:"items" validate:"min=1,dive"`
	TotalPrice     float64               `json:"total_price" validate:"gte=0"`
	Comment        string                `json:"comment"`
	PaymentMethod  payment.Method        `json:"payment_method"`
	Status         status.Status         `json:"status"`
	OrderNumber    string                `json:"order_number"`
	CreatedAt      time.Time             `json:"created_at"`
}

// ItemsTotal sums the line totals of all items.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.LineTotal()
	}
	return total
}
