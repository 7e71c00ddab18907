package icatalogrepo

import (
	"context"

	"github.com/tokyogo/backend/internal/service/models/category"
	"github.com/tokyogo/backend/internal/service/models/product"
)

// Repository is the Postgres catalog repository contract. Listing and search
// only see active products; deactivation is a soft delete.
type Repository interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]product.Product, error)
	SearchProducts(ctx context.Context, query string) ([]product.Product, error)
	InsertProduct(ctx context.Context, p product.Product) (int64, error)
	DeactivateProduct(ctx context.Context, id int64) error
}
