package listorders

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/transport/http/httperr"
)

const defaultLimit = 50

// service is an interface for the service layer.
type service interface {
	ListOrders(ctx context.Context, limit int) ([]order.Order, error)
}

// ListOrders handles the operator order listing request, most recent first.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	orders, err := service.ListOrders(r.Context(), limit)
	if err != nil {
		httperr.Write(w, err)
		slog.Error("Error listing orders", "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, orders)
}
