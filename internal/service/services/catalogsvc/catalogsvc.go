package catalogsvc

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/tokyogo/backend/internal/dal/interfaces/icatalogrepo"
	"github.com/tokyogo/backend/internal/dal/postgres"
	catalogrepo "github.com/tokyogo/backend/internal/dal/repositories/catalog/postgres"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/category"
	"github.com/tokyogo/backend/internal/service/models/product"
)

// CatalogService serves category and product browsing plus the admin product
// operations.
type CatalogService struct {
	repo     icatalogrepo.Repository
	validate *validator.Validate
}

type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		panic("catalogsvc: no repository configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CatalogService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CatalogService) {
		s.repo = catalogrepo.NewPostgresCatalogRepository(pgClient.Pool())
	}
}

// WithRepository overrides the catalog repository, used in tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo icatalogrepo.Repository) option {
	return func(s *CatalogService) {
		s.repo = repo
	}
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]category.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ListProducts returns active products, all of them when categoryID is zero.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID int64) ([]product.Product, error) {
	return s.repo.ListProducts(ctx, categoryID)
}

// SearchProducts returns active products matching the query by name or
// ingredients.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]product.Product, error) {
	if query == "" {
		return []product.Product{}, nil
	}
	return s.repo.SearchProducts(ctx, query)
}

// CreateProduct adds a new product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, p product.Product) (int64, error) {
	if err := s.validate.Struct(&p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return 0, errs.NewValidation("field %s failed on %s", fe.Field(), fe.Tag())
		}
		return 0, errs.NewValidation("%s", err.Error())
	}

	return s.repo.InsertProduct(ctx, p)
}

// DeactivateProduct soft-deletes a product. Orders placed earlier keep their
// line-item snapshots untouched.
func (s *CatalogService) DeactivateProduct(ctx context.Context, id int64) error {
	return s.repo.DeactivateProduct(ctx, id)
}
