package ordersvc

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokyogo/backend/internal/dal/interfaces/iorderrepo"
	"github.com/tokyogo/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/orderevent"
	"github.com/tokyogo/backend/internal/service/models/orderitem"
	"github.com/tokyogo/backend/internal/service/models/outbox"
	"github.com/tokyogo/backend/internal/service/models/payment"
	"github.com/tokyogo/backend/internal/service/models/status"
)

var orderNumberRe = regexp.MustCompile(`^\d{6}$`)

type fakeOrderRepo struct {
	insertErrs     []error
	inserted       []order.Order
	attemptNumbers []string
	nextID         int64
	byID           map[int64]*order.Order
	statusUpdates  []status.Status
}

func (f *fakeOrderRepo) Insert(_ context.Context, o order.Order) (int64, error) {
	f.attemptNumbers = append(f.attemptNumbers, o.OrderNumber)
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return 0, err
		}
	}
	f.nextID++
	o.ID = f.nextID
	f.inserted = append(f.inserted, o)
	return f.nextID, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ int) ([]order.Order, error) {
	var result []order.Order
	for _, o := range f.byID {
		result = append(result, *o)
	}
	return result, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, newStatus status.Status) error {
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	f.statusUpdates = append(f.statusUpdates, newStatus)
	f.byID[id].Status = newStatus
	return nil
}

type fakeOutboxRepo struct {
	messages []outbox.Message
}

func (f *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.Message, error) {
	return f.messages, nil
}

func (f *fakeOutboxRepo) Delete(context.Context, int64) error { return nil }

func (f *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

type fakeUOW struct {
	orders    *fakeOrderRepo
	outbox    *fakeOutboxRepo
	begun     int
	committed int
}

func (f *fakeUOW) Begin(context.Context) error    { f.begun++; return nil }
func (f *fakeUOW) Commit(context.Context) error   { f.committed++; return nil }
func (f *fakeUOW) Rollback(context.Context) error { return nil }

func (f *fakeUOW) OrderRepository() iorderrepo.Repository   { return f.orders }
func (f *fakeUOW) OutboxRepository() ioutboxrepo.Repository { return f.outbox }

func newTestService(work *fakeUOW) *OrderService {
	return MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork { return work }))
}

func newFakeUOW() *fakeUOW {
	return &fakeUOW{
		orders: &fakeOrderRepo{byID: map[int64]*order.Order{}},
		outbox: &fakeOutboxRepo{},
	}
}

func validOrder() order.Order {
	return order.Order{
		TelegramUserID: 111,
		Username:       "alice",
		Phone:          "+1555",
		Address:        "1 Main St",
		Items: []orderitem.OrderItem{
			{ProductID: 2, Quantity: 2, Name: "Filadelfia", Price: 320},
		},
		TotalPrice:    640,
		PaymentMethod: payment.MethodCash,
	}
}

func TestSubmit(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	saved, err := svc.Submit(context.Background(), validOrder())
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.ID)
	assert.Regexp(t, orderNumberRe, saved.OrderNumber)
	assert.Equal(t, status.StatusPending, saved.Status)
	assert.Equal(t, 1, work.committed)

	require.Len(t, work.orders.inserted, 1)
	persisted := work.orders.inserted[0]
	require.Len(t, persisted.Items, 1)
	assert.Equal(t, int64(2), persisted.Items[0].ProductID)
	assert.Equal(t, "Filadelfia", persisted.Items[0].Name)
	assert.Equal(t, 320.0, persisted.Items[0].Price)
	assert.Equal(t, 2, persisted.Items[0].Quantity)

	require.Len(t, work.outbox.messages, 1)
	var event orderevent.Event
	require.NoError(t, json.Unmarshal(work.outbox.messages[0].Payload, &event))
	assert.Equal(t, orderevent.TypeCreated, event.Type)
	assert.Equal(t, saved.OrderNumber, event.Order.OrderNumber)
	assert.NotEmpty(t, event.EventID)
}

func TestSubmitDefaultsPaymentMethodToCash(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	o := validOrder()
	o.PaymentMethod = ""

	saved, err := svc.Submit(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, payment.MethodCash, saved.PaymentMethod)
}

func TestSubmitEmptyItems(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	o := validOrder()
	o.Items = nil
	o.TotalPrice = 0

	_, err := svc.Submit(context.Background(), o)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	// Nothing persisted, no transaction even opened.
	assert.Empty(t, work.orders.inserted)
	assert.Zero(t, work.begun)
}

func TestSubmitMissingPhone(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	o := validOrder()
	o.Phone = ""

	_, err := svc.Submit(context.Background(), o)
	assert.True(t, errs.IsValidation(err))
}

func TestSubmitTotalMismatch(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	o := validOrder()
	o.TotalPrice = 999

	_, err := svc.Submit(context.Background(), o)
	assert.True(t, errs.IsValidation(err))
	assert.Empty(t, work.orders.inserted)
}

func TestSubmitUnknownPaymentMethod(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	o := validOrder()
	o.PaymentMethod = "crypto"

	_, err := svc.Submit(context.Background(), o)
	assert.True(t, errs.IsValidation(err))
}

func TestSubmitRetriesOnOrderNumberCollision(t *testing.T) {
	work := newFakeUOW()
	work.orders.insertErrs = []error{errs.ErrOrderNumberConflict, errs.ErrOrderNumberConflict}
	svc := newTestService(work)

	saved, err := svc.Submit(context.Background(), validOrder())
	require.NoError(t, err)

	// Two collisions, then success: a fresh number is generated per attempt.
	assert.Len(t, work.orders.attemptNumbers, 3)
	for _, number := range work.orders.attemptNumbers {
		assert.Regexp(t, orderNumberRe, number)
	}
	assert.Regexp(t, orderNumberRe, saved.OrderNumber)
	assert.Equal(t, 1, work.committed)
}

func TestSubmitGivesUpAfterBoundedRetries(t *testing.T) {
	work := newFakeUOW()
	for i := 0; i < 10; i++ {
		work.orders.insertErrs = append(work.orders.insertErrs, errs.ErrOrderNumberConflict)
	}
	svc := newTestService(work)

	_, err := svc.Submit(context.Background(), validOrder())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrOrderNumberConflict)
	assert.Len(t, work.orders.attemptNumbers, orderNumberMaxRetries+1)
	assert.Zero(t, work.committed)
}

func TestSetStatus(t *testing.T) {
	work := newFakeUOW()
	work.orders.byID[1] = &order.Order{ID: 1, Status: status.StatusPending}
	svc := newTestService(work)

	updated, err := svc.SetStatus(context.Background(), 1, status.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, status.StatusConfirmed, updated.Status)
	assert.Equal(t, 1, work.committed)

	require.Len(t, work.outbox.messages, 1)
	var event orderevent.Event
	require.NoError(t, json.Unmarshal(work.outbox.messages[0].Payload, &event))
	assert.Equal(t, orderevent.TypeStatusChanged, event.Type)
}

func TestSetStatusNotFound(t *testing.T) {
	work := newFakeUOW()
	svc := newTestService(work)

	_, err := svc.SetStatus(context.Background(), 42, status.StatusConfirmed)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	// No row created as a side effect.
	assert.Empty(t, work.orders.byID)
	assert.Empty(t, work.orders.statusUpdates)
}

func TestSetStatusRejectsInvalidTransition(t *testing.T) {
	work := newFakeUOW()
	work.orders.byID[1] = &order.Order{ID: 1, Status: status.StatusCompleted}
	svc := newTestService(work)

	_, err := svc.SetStatus(context.Background(), 1, status.StatusPreparing)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidTransition(err))
	assert.Empty(t, work.orders.statusUpdates)
	assert.Zero(t, work.committed)
}

func TestNewOrderNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, orderNumberRe, newOrderNumber())
	}
}
