package updatestatus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/status"
)

type fakeService struct {
	calls []status.Status
	err   error
}

func (f *fakeService) SetStatus(_ context.Context, id int64, newStatus status.Status) (*order.Order, error) {
	f.calls = append(f.calls, newStatus)
	if f.err != nil {
		return nil, f.err
	}
	return &order.Order{ID: id, Status: newStatus}, nil
}

func newRequest(t *testing.T, target, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "1")
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateStatusFromQuery(t *testing.T) {
	svc := &fakeService{}
	rec := httptest.NewRecorder()

	UpdateStatus(rec, newRequest(t, "/api/admin/orders/1/status?status=confirmed", ""), svc)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "confirmed")

	require.Len(t, svc.calls, 1)
	assert.Equal(t, status.StatusConfirmed, svc.calls[0])
}

func TestUpdateStatusFromBody(t *testing.T) {
	svc := &fakeService{}
	rec := httptest.NewRecorder()

	UpdateStatus(rec, newRequest(t, "/api/admin/orders/1/status", `{"status":"delivering"}`), svc)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.calls, 1)
	assert.Equal(t, status.StatusDelivering, svc.calls[0])
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	svc := &fakeService{}
	rec := httptest.NewRecorder()

	UpdateStatus(rec, newRequest(t, "/api/admin/orders/1/status?status=shipped", ""), svc)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := &fakeService{err: errs.ErrNotFound}
	rec := httptest.NewRecorder()

	UpdateStatus(rec, newRequest(t, "/api/admin/orders/1/status?status=confirmed", ""), svc)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	svc := &fakeService{err: &errs.InvalidTransitionError{From: "completed", To: "preparing"}}
	rec := httptest.NewRecorder()

	UpdateStatus(rec, newRequest(t, "/api/admin/orders/1/status?status=preparing", ""), svc)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
