package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tokyogo/backend/internal/service/errs"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// Write maps a service error to its HTTP status and writes a JSON error body.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errs.IsInvalidTransition(err), errors.Is(err, errs.ErrOrderNumberConflict):
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorResponse{Detail: err.Error()}); encErr != nil {
		slog.Error("failed to write error response", "error", encErr)
	}
}

// WriteJSON writes a success payload.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
