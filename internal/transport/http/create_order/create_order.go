package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/orderitem"
	"github.com/tokyogo/backend/internal/service/models/payment"
	"github.com/tokyogo/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	Submit(ctx context.Context, o order.Order) (order.Order, error)
}

// notifier is the notification relay invoked after a successful insert.
type notifier interface {
	Notify(ctx context.Context, o order.Order)
}

type request struct {
	TelegramUserID int64                 `json:"telegram_user_id"`
	Username       string                `json:"username"`
	Phone          string                `json:"phone"`
	Address        string                `json:"address"`
	Items          []orderitem.OrderItem `json:"items"`
	TotalPrice     float64               `json:"total_price"`
	Comment        string                `json:"comment"`
	PaymentMethod  string                `json:"payment_method"`
}

type response struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Message     string `json:"message"`
}

// CreateOrder handles the order submission request. The order is considered
// placed once persisted; notification outcomes never change the response.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service, notifier notifier) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, errs.NewValidation("failed to decode request body"))
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}

	o := order.Order{
		TelegramUserID: req.TelegramUserID,
		Username:       req.Username,
		Phone:          req.Phone,
		Address:        req.Address,
		Items:          req.Items,
		TotalPrice:     req.TotalPrice,
		Comment:        req.Comment,
		PaymentMethod:  payment.Method(req.PaymentMethod),
	}

	saved, err := service.Submit(r.Context(), o)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error submitting order", "error", err)

		return
	}

	// The source awaits both notifications before acknowledging, so the relay
	// is invoked synchronously here. It never returns an error.
	notifier.Notify(r.Context(), saved)

	httperr.WriteJSON(w, http.StatusOK, response{
		Success:     true,
		OrderID:     saved.ID,
		OrderNumber: saved.OrderNumber,
		Message:     "Заказ принят!",
	})
}
