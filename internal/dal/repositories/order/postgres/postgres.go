package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tokyogo/backend/internal/service/errs"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/orderitem"
	"github.com/tokyogo/backend/internal/service/models/payment"
	"github.com/tokyogo/backend/internal/service/models/status"
)

const uniqueViolationCode = "23505"

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id             int64     `db:"id"`
	TelegramUserId int64     `db:"telegram_user_id"`
	Username       string    `db:"username"`
	Phone          string    `db:"phone"`
	Address        string    `db:"address"`
	TotalPrice     float64   `db:"total_price"`
	Comment        string    `db:"comment"`
	PaymentMethod  string    `db:"payment_method"`
	Status         string    `db:"status"`
	OrderNumber    string    `db:"order_number"`
	CreatedAt      time.Time `db:"created_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	st, err := status.Parse(o.Status)
	if err != nil {
		return nil, err
	}
	pm, err := payment.Parse(o.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &order.Order{
		ID:             o.Id,
		TelegramUserID: o.TelegramUserId,
		Username:       o.Username,
		Phone:          o.Phone,
		Address:        o.Address,
		TotalPrice:     o.TotalPrice,
		Comment:        o.Comment,
		PaymentMethod:  pm,
		Status:         st,
		OrderNumber:    o.OrderNumber,
		CreatedAt:      o.CreatedAt,
		Items:          []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id        int64   `db:"id"`
	OrderId   int64   `db:"order_id"`
	ProductId int64   `db:"product_id"`
	Name      string  `db:"name"`
	Price     float64 `db:"price"`
	Quantity  int     `db:"quantity"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() *orderitem.OrderItem {
	return &orderitem.OrderItem{
		ID:        oi.Id,
		OrderID:   oi.OrderId,
		ProductID: oi.ProductId,
		Name:      oi.Name,
		Price:     oi.Price,
		Quantity:  oi.Quantity,
	}
}

// GenericConn is an interface that works with both pgxpool.Pool and pgx.Tx
type GenericConn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert appends the order row with its line items and returns the assigned
// id. A duplicate order number maps to errs.ErrOrderNumberConflict so the
// service layer can regenerate the number and retry.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (int64, error) {
	query, args, err := r.sb.
		Insert("orders").
		Columns(
			"telegram_user_id",
			"username",
			"phone",
			"address",
			"total_price",
			"comment",
			"payment_method",
			"order_number",
			"status",
			"created_at",
		).
		Values(
			o.TelegramUserID,
			o.Username,
			o.Phone,
			o.Address,
			o.TotalPrice,
			o.Comment,
			o.PaymentMethod,
			o.OrderNumber,
			o.Status,
			o.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, fmt.Errorf("order number %s: %w", o.OrderNumber, errs.ErrOrderNumberConflict)
		}
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	if len(o.Items) == 0 {
		return id, nil
	}

	itemsQuery := r.sb.
		Insert("order_items").
		Columns("order_id", "product_id", "name", "price", "quantity")
	for _, item := range o.Items {
		itemsQuery = itemsQuery.Values(id, item.ProductID, item.Name, item.Price, item.Quantity)
	}

	query, args, err = itemsQuery.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build items insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert order items: %w", err)
	}

	return id, nil
}

// GetByID retrieves the order with its line items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := r.selectOrders().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var dal OrderDal
	var createdAt pgtype.Timestamptz
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.TelegramUserId,
		&dal.Username,
		&dal.Phone,
		&dal.Address,
		&dal.TotalPrice,
		&dal.Comment,
		&dal.PaymentMethod,
		&dal.Status,
		&dal.OrderNumber,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	dal.CreatedAt = createdAt.Time

	model, err := dal.ToModel()
	if err != nil {
		return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	items, err := r.queryItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	model.Items = append(model.Items, items...)

	return model, nil
}

// List retrieves up to limit orders with their items, most recent first.
func (r *PostgresOrderRepository) List(ctx context.Context, limit int) ([]order.Order, error) {
	builder := r.selectOrders().OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		var createdAt pgtype.Timestamptz
		err := rows.Scan(
			&dal.Id,
			&dal.TelegramUserId,
			&dal.Username,
			&dal.Phone,
			&dal.Address,
			&dal.TotalPrice,
			&dal.Comment,
			&dal.PaymentMethod,
			&dal.Status,
			&dal.OrderNumber,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		dal.CreatedAt = createdAt.Time

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(result) == 0 {
		return []order.Order{}, nil
	}

	orderIds := make([]int64, 0, len(result))
	for _, o := range result {
		orderIds = append(orderIds, o.ID)
	}

	items, err := r.queryItems(ctx, orderIds)
	if err != nil {
		return nil, err
	}

	for i := range result {
		for _, item := range items {
			if item.OrderID == result[i].ID {
				result[i].Items = append(result[i].Items, item)
			}
		}
	}

	return result, nil
}

// UpdateStatus overwrites the order's status.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	newStatus status.Status,
) error {
	query, args, err := r.sb.
		Update("orders").
		Set("status", newStatus).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
	}

	return nil
}

func (r *PostgresOrderRepository) selectOrders() sq.SelectBuilder {
	return r.sb.
		Select(
			"id",
			"telegram_user_id",
			"username",
			"phone",
			"address",
			"total_price",
			"comment",
			"payment_method",
			"status",
			"order_number",
			"created_at",
		).
		From("orders")
}

func (r *PostgresOrderRepository) queryItems(
	ctx context.Context,
	orderIds []int64,
) ([]orderitem.OrderItem, error) {
	query, args, err := r.sb.
		Select("id", "order_id", "product_id", "name", "price", "quantity").
		From("order_items").
		Where(sq.Eq{"order_id": orderIds}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build items query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Name,
			&dal.Price,
			&dal.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
