package createorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/status"
)

type fakeService struct {
	submitted []order.Order
	result    order.Order
	err       error
}

func (f *fakeService) Submit(_ context.Context, o order.Order) (order.Order, error) {
	f.submitted = append(f.submitted, o)
	if f.err != nil {
		return order.Order{}, f.err
	}
	return f.result, nil
}

type fakeNotifier struct {
	notified []order.Order
}

func (f *fakeNotifier) Notify(_ context.Context, o order.Order) {
	f.notified = append(f.notified, o)
}

const submissionBody = `{
	"telegram_user_id": 111,
	"username": "alice",
	"phone": "+1555",
	"address": "1 Main St",
	"items": [{"product_id": 2, "quantity": 2, "name": "Filadelfia", "price": 320}],
	"total_price": 640,
	"payment_method": "cash"
}`

func TestCreateOrder(t *testing.T) {
	svc := &fakeService{
		result: order.Order{
			ID:          7,
			OrderNumber: "123456",
			Status:      status.StatusPending,
		},
	}
	notifier := &fakeNotifier{}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(submissionBody))
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, svc, notifier)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success     bool   `json:"success"`
		OrderID     int64  `json:"order_id"`
		OrderNumber string `json:"order_number"`
		Message     string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.OrderID)
	assert.Regexp(t, `^\d{6}$`, resp.OrderNumber)
	assert.NotEmpty(t, resp.Message)

	// The relay receives the persisted order, number included.
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "123456", notifier.notified[0].OrderNumber)

	require.Len(t, svc.submitted, 1)
	assert.Equal(t, int64(111), svc.submitted[0].TelegramUserID)
	assert.Equal(t, 640.0, svc.submitted[0].TotalPrice)
}

func TestCreateOrderValidationError(t *testing.T) {
	svc := &fakeService{err: errs.NewValidation("field Items failed on min")}
	notifier := &fakeNotifier{}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(submissionBody))
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, svc, notifier)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, notifier.notified)
}

func TestCreateOrderMalformedBody(t *testing.T) {
	svc := &fakeService{}
	notifier := &fakeNotifier{}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, svc, notifier)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.submitted)
}

func TestCreateOrderConflictAfterRetries(t *testing.T) {
	svc := &fakeService{err: errs.ErrOrderNumberConflict}
	notifier := &fakeNotifier{}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(submissionBody))
	rec := httptest.NewRecorder()

	CreateOrder(rec, req, svc, notifier)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, notifier.notified)
}
