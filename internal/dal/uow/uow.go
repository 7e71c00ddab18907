package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tokyogo/backend/internal/dal/interfaces/iorderrepo"
	"github.com/tokyogo/backend/internal/dal/interfaces/ioutboxrepo"
	"github.com/tokyogo/backend/internal/dal/postgres"
	orderrepo "github.com/tokyogo/backend/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/tokyogo/backend/internal/dal/repositories/outbox/postgres"
)

type unitOfWork struct {
	pool       *pgxpool.Pool
	tx         pgx.Tx
	orderRepo  iorderrepo.Repository
	outboxRepo ioutboxrepo.Repository
}

func (u *unitOfWork) OrderRepository() iorderrepo.Repository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.Repository {
	return u.outboxRepo
}

// NewUnitOfWork binds order and outbox repositories to the pool. Until Begin
// is called, repository operations run outside a transaction.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		pool:       client.Pool(),
		orderRepo:  orderrepo.NewPostgresOrderRepository(client.Pool()),
		outboxRepo: outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
