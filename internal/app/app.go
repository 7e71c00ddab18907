package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tokyogo/backend/internal/dal/postgres"
	"github.com/tokyogo/backend/internal/dal/rabbitmq"
	outboxrepo "github.com/tokyogo/backend/internal/dal/repositories/outbox/postgres"
	"github.com/tokyogo/backend/internal/service/services/catalogsvc"
	"github.com/tokyogo/backend/internal/service/services/notifysvc"
	"github.com/tokyogo/backend/internal/service/services/ordersvc"
	"github.com/tokyogo/backend/internal/tracing"
	bottransport "github.com/tokyogo/backend/internal/transport/bot"
	httptransport "github.com/tokyogo/backend/internal/transport/http"
	outboxworker "github.com/tokyogo/backend/internal/worker/outbox"
)

// App represents the application.
type App struct {
	orderSvc        *ordersvc.OrderService
	catalogSvc      *catalogsvc.CatalogService
	notifySvc       *notifysvc.NotifyService
	transport       *httptransport.HTTPTransport
	bot             *bottransport.BotTransport
	outboxWorker    *outboxworker.Worker
	postgresClient  *postgres.Client
	rabbitClient    *rabbitmq.Client
	tracingShutdown func(ctx context.Context) error
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	tracingShutdown := tracing.MustSetup()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()
	bot := bottransport.MustNewBot()

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
	)

	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithPostgresClient(postgresClient),
	)

	notifySvc := notifysvc.MustNewNotifyService(
		notifysvc.WithBot(bot),
		notifysvc.WithOperatorChannel(mustEnvInt64("ADMIN_CHAT_ID"), envInt("ORDERS_TOPIC_ID", 3)),
		notifysvc.WithMiniAppURL(miniAppURL()),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, catalogSvc, notifySvc)
	transport.RegisterRoutes()

	botTransport := bottransport.NewBotTransport(bot, miniAppURL())
	botTransport.RegisterHandlers()

	worker := outboxworker.NewWorker(
		outboxrepo.NewOutboxRepository(postgresClient.Pool()),
		rabbitClient,
	)

	return &App{
		orderSvc:        orderSvc,
		catalogSvc:      catalogSvc,
		notifySvc:       notifySvc,
		transport:       transport,
		bot:             botTransport,
		outboxWorker:    worker,
		postgresClient:  postgresClient,
		rabbitClient:    rabbitClient,
		tracingShutdown: tracingShutdown,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go a.bot.Run()
	go a.outboxWorker.Start(workerCtx)

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()
	a.bot.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.tracingShutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}

func mustEnvInt64(key string) int64 {
	val, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		panic("invalid " + key + ": " + err.Error())
	}
	return val
}

func envInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

func miniAppURL() string {
	if url := os.Getenv("MINI_APP_URL"); url != "" {
		return url
	}
	return "https://localhost:8443/mini-app"
}
