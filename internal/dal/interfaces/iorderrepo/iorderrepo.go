package iorderrepo

import (
	"context"

	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/status"
)

// Repository is the Postgres order repository contract.
type Repository interface {
	// Insert appends the order with its line items and returns the assigned
	// id. A colliding order number surfaces as errs.ErrOrderNumberConflict.
	Insert(ctx context.Context, o order.Order) (int64, error)

	// GetByID returns the order with its items, or errs.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*order.Order, error)

	// List returns up to limit orders with their items, most recent first.
	List(ctx context.Context, limit int) ([]order.Order, error)

	// UpdateStatus overwrites the order's status, or errs.ErrNotFound.
	UpdateStatus(ctx context.Context, id int64, newStatus status.Status) error
}
