package bottransport

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	tele "gopkg.in/telebot.v3"
)

// sendTimeout bounds every outbound call to the messaging platform so a
// channel outage cannot stall order acknowledgment.
const sendTimeout = 10 * time.Second

// MustNewBot creates the Telegram bot shared by the inbound command handlers
// and the notification relay.
func MustNewBot() *tele.Bot {
	bot, err := tele.NewBot(tele.Settings{
		Token:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		Client: &http.Client{Timeout: sendTimeout},
	})
	if err != nil {
		panic("failed to create telegram bot: " + err.Error())
	}

	return bot
}

// BotTransport hosts the long-polling loop and the inbound command handlers.
type BotTransport struct {
	bot        *tele.Bot
	miniAppURL string
}

func NewBotTransport(bot *tele.Bot, miniAppURL string) *BotTransport {
	return &BotTransport{
		bot:        bot,
		miniAppURL: miniAppURL,
	}
}

// RegisterHandlers registers the storefront entry points.
func (b *BotTransport) RegisterHandlers() {
	menu := &tele.ReplyMarkup{}
	btnMenu := menu.WebApp("🍣 Открыть меню", &tele.WebApp{URL: b.miniAppURL})
	btnContacts := menu.Data("☎ Контакты", "contacts")
	btnHelp := menu.Data("❓ Помощь", "help")
	menu.Inline(
		menu.Row(btnMenu),
		menu.Row(btnContacts),
		menu.Row(btnHelp),
	)

	b.bot.Handle("/start", func(c tele.Context) error {
		return c.Send(
			"🍣 Добро пожаловать в TokyoGo!\n\n"+
				"Свежие суши • Только доставка • 45–60 минут\n\n"+
				"Нажми кнопку ниже, чтобы открыть меню и сделать заказ!",
			menu,
		)
	})

	b.bot.Handle(&btnContacts, func(c tele.Context) error {
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send(
			"☎ *Контакты*\n\n"+
				"📱 Телефон: +7 (999) 999-99-99\n"+
				"⏰ Время работы: 11:00 - 23:00\n"+
				"📍 Зона доставки: центр города",
			tele.ModeMarkdown,
		)
	})

	b.bot.Handle(&btnHelp, func(c tele.Context) error {
		if err := c.Respond(); err != nil {
			return err
		}
		return c.Send(
			"❓ *Помощь*\n\n"+
				"1️⃣ Нажми 'Открыть меню'\n"+
				"2️⃣ Выбери товары\n"+
				"3️⃣ Оформи заказ\n"+
				"4️⃣ Жди доставку!\n\n"+
				"Если вопросы - напиши в чат поддержки",
			tele.ModeMarkdown,
		)
	})
}

// Run starts long polling and blocks until Stop is called.
func (b *BotTransport) Run() {
	slog.Info("Telegram bot polling started")
	b.bot.Start()
}

// Stop stops the polling loop.
func (b *BotTransport) Stop() {
	b.bot.Stop()
}
