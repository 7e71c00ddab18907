package updatestatus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/status"
	"github.com/tokyogo/backend/internal/transport/http/httperr"
)

// service is an interface for the service layer.
type service interface {
	SetStatus(ctx context.Context, id int64, newStatus status.Status) (*order.Order, error)
}

type request struct {
	Status string `json:"status"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateStatus handles the operator status transition request. The new status
// may arrive as a query parameter or in the JSON body.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httperr.Write(w, errs.NewValidation("invalid order id"))
		return
	}

	raw := r.URL.Query().Get("status")
	if raw == "" {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			raw = req.Status
		}
	}

	newStatus, err := status.Parse(raw)
	if err != nil {
		httperr.Write(w, errs.NewValidation("unknown status %q", raw))
		return
	}

	if _, err := service.SetStatus(r.Context(), id, newStatus); err != nil {
		httperr.Write(w, err)
		slog.Error("Error updating order status", "order_id", id, "error", err)

		return
	}

	httperr.WriteJSON(w, http.StatusOK, response{
		Success: true,
		Message: fmt.Sprintf("Статус обновлён на %s", newStatus),
	})
}
