package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/viper"
	"github.com/tokyogo/backend/internal/dal/interfaces/iorderrepo"
	"github.com/tokyogo/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/tokyogo/backend/internal/dal/postgres"
	"github.com/tokyogo/backend/internal/dal/uow"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/orderevent"
	"github.com/tokyogo/backend/internal/service/models/outbox"
	"github.com/tokyogo/backend/internal/service/models/payment"
	"github.com/tokyogo/backend/internal/service/models/status"
	"go.opentelemetry.io/otel"
)

const (
	orderNumberLength = 6

	// orderNumberMaxRetries bounds regeneration attempts after a collision.
	orderNumberMaxRetries = 5

	// totalPriceTolerance absorbs float rounding when cross-checking the
	// submitted total against the line-item sum.
	totalPriceTolerance = 0.009
)

// OrderService is a service for managing orders.
type OrderService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	validate *validator.Validate
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.Repository
	OutboxRepository() ioutboxrepo.Repository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: no unit of work source configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work source, used in tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// Submit validates the order, assigns a unique 6-digit order number and
// persists it together with its line items and an order.created outbox event
// in one transaction. On an order-number collision the number is regenerated
// and the insert retried a bounded number of times.
func (s *OrderService) Submit(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "Submit")
	defer span.End()

	if err := s.validateSubmission(&o); err != nil {
		return order.Order{}, err
	}

	backoff := retry.WithMaxRetries(orderNumberMaxRetries, retry.NewConstant(10*time.Millisecond))

	var saved order.Order
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		o.OrderNumber = newOrderNumber()
		o.Status = status.StatusPending
		o.CreatedAt = time.Now()

		inserted, err := s.insertOrder(ctx, o)
		if err != nil {
			if errors.Is(err, errs.ErrOrderNumberConflict) {
				return retry.RetryableError(err)
			}
			return err
		}

		saved = inserted
		return nil
	})
	if err != nil {
		return order.Order{}, err
	}

	return saved, nil
}

// GetOrder returns the full order including its line items.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "GetOrder")
	defer span.End()

	return s.newUOW().OrderRepository().GetByID(ctx, id)
}

// ListOrders returns up to limit orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, limit int) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "ListOrders")
	defer span.End()

	return s.newUOW().OrderRepository().List(ctx, limit)
}

// SetStatus transitions the order to newStatus. Moves outside the directed
// transition set are rejected; concurrent updates to the same order are not
// coordinated and resolve last-write-wins.
func (s *OrderService) SetStatus(
	ctx context.Context,
	id int64,
	newStatus status.Status,
) (*order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "SetStatus")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer work.Rollback(ctx)

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(newStatus) {
		return nil, &errs.InvalidTransitionError{
			From: o.Status.String(),
			To:   newStatus.String(),
		}
	}

	if err := work.OrderRepository().UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	o.Status = newStatus

	if err := s.enqueueEvent(ctx, work, orderevent.TypeStatusChanged, *o); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *OrderService) insertOrder(ctx context.Context, o order.Order) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer work.Rollback(ctx)

	id, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return order.Order{}, err
	}
	o.ID = id

	if err := s.enqueueEvent(ctx, work, orderevent.TypeCreated, o); err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, err
	}

	return o, nil
}

func (s *OrderService) validateSubmission(o *order.Order) error {
	if o.PaymentMethod == "" {
		o.PaymentMethod = payment.MethodCash
	}
	if _, err := payment.Parse(o.PaymentMethod.String()); err != nil {
		return errs.NewValidation("unknown payment method %q", o.PaymentMethod)
	}

	if err := s.validate.Struct(o); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return errs.NewValidation("field %s failed on %s", fe.Field(), fe.Tag())
		}
		return errs.NewValidation("%s", err.Error())
	}

	if diff := math.Abs(o.TotalPrice - o.ItemsTotal()); diff > totalPriceTolerance {
		return errs.NewValidation(
			"total_price %.2f does not match line item sum %.2f",
			o.TotalPrice, o.ItemsTotal(),
		)
	}

	return nil
}

func (s *OrderService) enqueueEvent(
	ctx context.Context,
	work unitOfWork,
	eventType string,
	o order.Order,
) error {
	now := time.Now()

	payload, err := json.Marshal(orderevent.Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: now,
		Order:      o,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		QueueName:    viper.GetString("rabbitmq.orders.queue"),
		ExchangeName: viper.GetString("rabbitmq.orders.exchange"),
		RoutingKey:   eventType,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   viper.GetInt("rabbitmq.outbox.max_retries"),
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	})
}

// newOrderNumber generates the short public order identifier: a fixed-length
// string of random decimal digits.
func newOrderNumber() string {
	digits := make([]byte, orderNumberLength)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
