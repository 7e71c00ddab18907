package notifysvc

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/orderitem"
	"github.com/tokyogo/backend/internal/service/models/payment"
)

type sentMessage struct {
	recipient string
	text      string
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
}

func (f *fakeMessenger) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failFor[to.Recipient()]; ok {
		return nil, err
	}

	text, _ := what.(string)
	f.sent = append(f.sent, sentMessage{recipient: to.Recipient(), text: text})
	return &tele.Message{}, nil
}

func testOrder() order.Order {
	return order.Order{
		ID:             7,
		TelegramUserID: 111,
		Username:       "alice",
		Phone:          "+1555",
		Address:        "1 Main St",
		Items: []orderitem.OrderItem{
			{ProductID: 2, Quantity: 2, Name: "Филадельфия", Price: 320},
		},
		TotalPrice:    640,
		PaymentMethod: payment.MethodCash,
		OrderNumber:   "123456",
	}
}

func newTestService(m *fakeMessenger) *NotifyService {
	return MustNewNotifyService(
		WithBot(m),
		WithOperatorChannel(-100500, 3),
		WithMiniAppURL("https://example.com/mini-app"),
	)
}

func TestNotifySendsBothMessages(t *testing.T) {
	messenger := &fakeMessenger{}
	svc := newTestService(messenger)

	svc.Notify(context.Background(), testOrder())

	require.Len(t, messenger.sent, 2)
	recipients := []string{messenger.sent[0].recipient, messenger.sent[1].recipient}
	assert.Contains(t, recipients, "-100500")
	assert.Contains(t, recipients, "111")
}

func TestNotifyOperatorFailureDoesNotSuppressCustomer(t *testing.T) {
	messenger := &fakeMessenger{
		failFor: map[string]error{"-100500": errors.New("chat not found")},
	}
	svc := newTestService(messenger)

	// Notify swallows both errors: a dead channel never fails the order.
	svc.Notify(context.Background(), testOrder())

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "111", messenger.sent[0].recipient)
}

func TestNotifyCustomerFailureDoesNotSuppressOperator(t *testing.T) {
	messenger := &fakeMessenger{
		failFor: map[string]error{"111": errors.New("blocked by user")},
	}
	svc := newTestService(messenger)

	svc.Notify(context.Background(), testOrder())

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, "-100500", messenger.sent[0].recipient)
}

func TestNotifyOperatorWrapsChannelError(t *testing.T) {
	cause := errors.New("rate limited")
	messenger := &fakeMessenger{
		failFor: map[string]error{"-100500": cause},
	}
	svc := newTestService(messenger)

	err := svc.NotifyOperator(testOrder())
	require.Error(t, err)

	var channelErr *errs.ChannelError
	require.ErrorAs(t, err, &channelErr)
	assert.ErrorIs(t, err, cause)
}

func TestOperatorMessageContents(t *testing.T) {
	o := testOrder()
	o.Comment = "без имбиря"

	text := operatorMessage(o)

	assert.Contains(t, text, "123456")
	assert.Contains(t, text, "alice")
	assert.Contains(t, text, "+1555")
	assert.Contains(t, text, "1 Main St")
	assert.Contains(t, text, "Филадельфия x2 = 640₽")
	assert.Contains(t, text, "*Сумма:* 640₽")
	assert.Contains(t, text, "cash")
	assert.Contains(t, text, "без имбиря")
}

func TestOperatorMessageOmitsEmptyComment(t *testing.T) {
	text := operatorMessage(testOrder())
	assert.NotContains(t, text, "Комментарий")
}

func TestCustomerMessageContents(t *testing.T) {
	text := customerMessage("123456")
	assert.Contains(t, text, "123456")
	assert.Contains(t, text, "45–60 минут")
}
