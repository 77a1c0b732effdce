package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/models/orderitem"
)

var orderColumns = []string{
	"id",
	"user_id",
	"shop_id",
	"shipping_info",
	"payment_info",
	"items_price",
	"tax_price",
	"shipping_price",
	"total_discount",
	"total_price",
	"order_status",
	"paid_at",
	"delivered_at",
	"created_at",
	"updated_at",
}

// PostgresOrderRepository persists orders. It runs against a pool or a
// transaction depending on the Querier it was built with.
type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert creates a new order row and returns it with the assigned id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (*order.Order, error) {
	var shopID *int64
	if o.ShopID != 0 {
		shopID = &o.ShopID
	}

	query, args, err := sq.Insert("orders").
		Columns(
			"user_id",
			"shop_id",
			"shipping_info",
			"payment_info",
			"items_price",
			"tax_price",
			"shipping_price",
			"total_discount",
			"total_price",
			"order_status",
			"paid_at",
			"delivered_at",
			"created_at",
			"updated_at",
		).
		Values(
			o.UserID,
			shopID,
			o.ShippingInfo,
			o.PaymentInfo,
			o.ItemsPrice,
			o.TaxPrice,
			o.ShippingPrice,
			o.TotalDiscount,
			o.TotalPrice,
			o.Status.String(),
			o.PaidAt,
			o.DeliveredAt,
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return &o, nil
}

// GetByID retrieves a single order without its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return o, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.UserIds) > 0 {
		builder = builder.Where(sq.Eq{"user_id": filter.UserIds})
	}
	if len(filter.ShopIds) > 0 {
		builder = builder.Where(sq.Eq{"shop_id": filter.ShopIds})
	}
	if filter.ConsolidatedOnly {
		builder = builder.Where(sq.Eq{"shop_id": nil})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// UpdateTotals persists the price fields computed by the price calculator.
func (r *PostgresOrderRepository) UpdateTotals(ctx context.Context, o *order.Order) error {
	query, args, err := sq.Update("orders").
		Set("items_price", o.ItemsPrice).
		Set("tax_price", o.TaxPrice).
		Set("shipping_price", o.ShippingPrice).
		Set("total_discount", o.TotalDiscount).
		Set("total_price", o.TotalPrice).
		Set("updated_at", o.UpdatedAt).
		Where(sq.Eq{"id": o.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrOrderNotFound
	}

	return nil
}

// UpdateStatus moves an order to the given fulfillment status.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status, deliveredAt *time.Time) error {
	builder := sq.Update("orders").
		Set("order_status", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if deliveredAt != nil {
		builder = builder.Set("delivered_at", *deliveredAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrOrderNotFound
	}

	return nil
}

// Delete removes an order row.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrOrderNotFound
	}

	return nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o      order.Order
		shopID *int64
		status string
	)

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&shopID,
		&o.ShippingInfo,
		&o.PaymentInfo,
		&o.ItemsPrice,
		&o.TaxPrice,
		&o.ShippingPrice,
		&o.TotalDiscount,
		&o.TotalPrice,
		&status,
		&o.PaidAt,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if shopID != nil {
		o.ShopID = *shopID
	}
	o.Status = order.Status(status)
	o.OrderItems = []orderitem.OrderItem{}

	return &o, nil
}
