package notifysvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v3"

	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
)

// messenger is the messaging-platform send surface, satisfied by *tele.Bot.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// NotifyService delivers the new-order alert to the operator channel and the
// confirmation to the customer. Each delivery is independent: one failing
// never suppresses the other, and neither failure reaches the submission
// caller.
type NotifyService struct {
	bot           messenger
	adminChatID   int64
	ordersTopicID int
	miniAppURL    string
}

type option func(*NotifyService)

// MustNewNotifyService creates a new NotifyService.
func MustNewNotifyService(opts ...option) *NotifyService {
	s := &NotifyService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.bot == nil {
		panic("notifysvc: no bot configured")
	}

	return s
}

// WithBot sets the messaging-platform client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBot(bot messenger) option {
	return func(s *NotifyService) {
		s.bot = bot
	}
}

// WithOperatorChannel sets the admin chat and the orders topic thread inside
// it.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOperatorChannel(chatID int64, topicID int) option {
	return func(s *NotifyService) {
		s.adminChatID = chatID
		s.ordersTopicID = topicID
	}
}

// WithMiniAppURL sets the storefront URL used in the customer confirmation
// button.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMiniAppURL(url string) option {
	return func(s *NotifyService) {
		s.miniAppURL = url
	}
}

// Notify issues both notifications for a persisted order concurrently and
// waits for them. Failures are logged and swallowed: the order stays placed
// whatever the messaging platform does.
func (s *NotifyService) Notify(ctx context.Context, o order.Order) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(2)

	g.Go(func() error {
		if err := s.NotifyOperator(o); err != nil {
			slog.Error("operator notification failed", "order_number", o.OrderNumber, "error", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := s.NotifyCustomer(o.TelegramUserID, o.OrderNumber); err != nil {
			slog.Error("customer notification failed", "order_number", o.OrderNumber, "error", err)
		}
		return nil
	})

	_ = g.Wait()
}

// NotifyOperator sends the formatted order summary to the operator channel.
func (s *NotifyService) NotifyOperator(o order.Order) error {
	_, err := s.bot.Send(
		tele.ChatID(s.adminChatID),
		operatorMessage(o),
		&tele.SendOptions{
			ThreadID:  s.ordersTopicID,
			ParseMode: tele.ModeMarkdown,
		},
	)
	if err != nil {
		return &errs.ChannelError{Op: "notify operator", Err: err}
	}

	return nil
}

// NotifyCustomer sends the order confirmation with a button that reopens the
// ordering interface.
func (s *NotifyService) NotifyCustomer(userID int64, orderNumber string) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.WebApp("🍣 Новый заказ", &tele.WebApp{URL: s.miniAppURL}),
	))

	_, err := s.bot.Send(
		tele.ChatID(userID),
		customerMessage(orderNumber),
		&tele.SendOptions{
			ParseMode:   tele.ModeMarkdown,
			ReplyMarkup: markup,
		},
	)
	if err != nil {
		return &errs.ChannelError{Op: "notify customer", Err: err}
	}

	return nil
}

func operatorMessage(o order.Order) string {
	var items strings.Builder
	for _, item := range o.Items {
		items.WriteString(fmt.Sprintf("• %s x%d = %g₽\n", item.Name, item.Quantity, item.LineTotal()))
	}

	var b strings.Builder
	b.WriteString("🔔 *НОВЫЙ ЗАКАЗ*\n\n")
	b.WriteString(fmt.Sprintf("📦 Номер: `%s`\n", o.OrderNumber))
	b.WriteString(fmt.Sprintf("👤 Клиент: %s\n", o.Username))
	b.WriteString(fmt.Sprintf("📱 Телефон: `%s`\n", o.Phone))
	b.WriteString(fmt.Sprintf("📍 Адрес: %s\n\n", o.Address))
	b.WriteString(fmt.Sprintf("🍣 *Товары:*\n%s\n", items.String()))
	b.WriteString(fmt.Sprintf("💰 *Сумма:* %g₽\n", o.TotalPrice))
	b.WriteString(fmt.Sprintf("💳 *Оплата:* %s\n", o.PaymentMethod))

	if o.Comment != "" {
		b.WriteString(fmt.Sprintf("📝 *Комментарий:* %s\n", o.Comment))
	}

	return b.String()
}

func customerMessage(orderNumber string) string {
	return fmt.Sprintf(
		"✅ *Спасибо за заказ!*\n\n"+
			"📦 Номер заказа: `%s`\n"+
			"⏰ Время доставки: 45–60 минут\n\n"+
			"Мы уведомим тебя, когда заказ выйдет на доставку!",
		orderNumber,
	)
}
