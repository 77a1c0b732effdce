package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/product"
)

var productColumns = []string{
	"id",
	"shop_id",
	"name",
	"price",
	"stock",
	"sold",
	"image",
	"created_at",
	"updated_at",
}

// PostgresProductRepository reads the catalog and applies the stock ledger
// mutation. Product CRUD lives in the catalog service, not here.
type PostgresProductRepository struct {
	conn postgres.Querier
}

func NewPostgresProductRepository(conn postgres.Querier) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
	}
}

// GetByID retrieves a product by id.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	query, args, err := sq.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	p, err := scanProduct(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrProductNotFound
		}

		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// DecrementStock applies stock -= qty, sold += qty in one conditional
// statement. The gate is stock <> 0, matching the checkout validation gate:
// an order larger than the remaining stock is still accepted and drives
// stock negative. Zero rows means the product vanished or sold out since
// validation, surfaced as ErrResourceExhausted so the checkout aborts.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id int64, qty int) (*product.Product, error) {
	const query = `
		UPDATE products
		SET stock = stock - $2,
		    sold = sold + $2,
		    updated_at = now()
		WHERE id = $1 AND stock <> 0
		RETURNING id, shop_id, name, price, stock, sold, image, created_at, updated_at
	`

	p, err := scanProduct(r.conn.QueryRow(ctx, query, id, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrResourceExhausted
		}

		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return p, nil
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product

	err := row.Scan(
		&p.ID,
		&p.ShopID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Sold,
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
