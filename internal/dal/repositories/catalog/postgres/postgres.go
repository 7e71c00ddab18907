package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/category"
	"github.com/tokyogo/backend/internal/service/models/product"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id          int64   `db:"id"`
	CategoryId  int64   `db:"category_id"`
	Name        string  `db:"name"`
	Description string  `db:"description"`
	Ingredients string  `db:"ingredients"`
	Price       float64 `db:"price"`
	ImageUrl    *string `db:"image_url"`
	Badge       *string `db:"badge"`
	IsActive    bool    `db:"is_active"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() *product.Product {
	return &product.Product{
		ID:          p.Id,
		CategoryID:  p.CategoryId,
		Name:        p.Name,
		Description: p.Description,
		Ingredients: p.Ingredients,
		Price:       p.Price,
		ImageURL:    p.ImageUrl,
		Badge:       p.Badge,
		IsActive:    p.IsActive,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresCatalogRepository represents a Postgres catalog repository.
type PostgresCatalogRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresCatalogRepository creates a new Postgres catalog repository.
func NewPostgresCatalogRepository(conn GenericConn) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ListCategories retrieves all categories ordered by id.
func (r *PostgresCatalogRepository) ListCategories(ctx context.Context) ([]category.Category, error) {
	query, args, err := r.sb.
		Select("id", "name", "slug").
		From("categories").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var result []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// ListProducts retrieves active products, optionally filtered by category.
func (r *PostgresCatalogRepository) ListProducts(
	ctx context.Context,
	categoryID int64,
) ([]product.Product, error) {
	builder := r.selectProducts().Where(sq.Eq{"is_active": true})
	if categoryID > 0 {
		builder = builder.Where(sq.Eq{"category_id": categoryID})
	}

	return r.queryProducts(ctx, builder)
}

// SearchProducts retrieves active products whose name or ingredients match
// the query substring, case-insensitively.
func (r *PostgresCatalogRepository) SearchProducts(
	ctx context.Context,
	query string,
) ([]product.Product, error) {
	pattern := "%" + query + "%"
	builder := r.selectProducts().
		Where(sq.Eq{"is_active": true}).
		Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"ingredients": pattern},
		})

	return r.queryProducts(ctx, builder)
}

// InsertProduct adds a new active product and returns its id.
func (r *PostgresCatalogRepository) InsertProduct(
	ctx context.Context,
	p product.Product,
) (int64, error) {
	query, args, err := r.sb.
		Insert("products").
		Columns("category_id", "name", "description", "ingredients", "price", "image_url", "badge").
		Values(p.CategoryID, p.Name, p.Description, p.Ingredients, p.Price, p.ImageURL, p.Badge).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}

	return id, nil
}

// DeactivateProduct soft-deletes a product so historical order snapshots stay
// valid.
func (r *PostgresCatalogRepository) DeactivateProduct(ctx context.Context, id int64) error {
	query, args, err := r.sb.
		Update("products").
		Set("is_active", false).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
	}

	return nil
}

func (r *PostgresCatalogRepository) selectProducts() sq.SelectBuilder {
	return r.sb.
		Select(
			"id",
			"category_id",
			"name",
			"description",
			"ingredients",
			"price",
			"image_url",
			"badge",
			"is_active",
		).
		From("products")
}

func (r *PostgresCatalogRepository) queryProducts(
	ctx context.Context,
	builder sq.SelectBuilder,
) ([]product.Product, error) {
	query, args, err := builder.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var dal ProductDal
		err := rows.Scan(
			&dal.Id,
			&dal.CategoryId,
			&dal.Name,
			&dal.Description,
			&dal.Ingredients,
			&dal.Price,
			&dal.ImageUrl,
			&dal.Badge,
			&dal.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
