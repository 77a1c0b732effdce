package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/coupon"
)

const pgUniqueViolation = "23505"

var couponColumns = []string{
	"id",
	"shop_id",
	"code",
	"discount_type",
	"discount_value",
	"num_of_coupons",
	"expiration_date",
	"product_ids",
	"created_at",
	"updated_at",
}

// PostgresCouponRepository persists coupons and owns the redemption pool.
type PostgresCouponRepository struct {
	conn postgres.Querier
}

func NewPostgresCouponRepository(conn postgres.Querier) *PostgresCouponRepository {
	return &PostgresCouponRepository{
		conn: conn,
	}
}

// Insert creates a coupon. A code reused within the same shop maps to
// apperror.ErrDuplicateCoupon via the unique index.
func (r *PostgresCouponRepository) Insert(ctx context.Context, c coupon.Coupon) (*coupon.Coupon, error) {
	query, args, err := sq.Insert("coupons").
		Columns(
			"shop_id",
			"code",
			"discount_type",
			"discount_value",
			"num_of_coupons",
			"expiration_date",
			"product_ids",
			"created_at",
			"updated_at",
		).
		Values(
			c.ShopID,
			c.Code,
			string(c.DiscountType),
			c.DiscountValue,
			c.NumOfCoupons,
			c.ExpirationDate,
			c.ProductIDs,
			c.CreatedAt,
			c.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.ErrDuplicateCoupon
		}

		return nil, fmt.Errorf("failed to insert coupon: %w", err)
	}

	return &c, nil
}

// GetByID retrieves a coupon by id.
func (r *PostgresCouponRepository) GetByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	query, args, err := sq.Select(couponColumns...).
		From("coupons").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	c, err := scanCoupon(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrCouponNotFound
		}

		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return c, nil
}

// Query retrieves coupons based on filter criteria.
func (r *PostgresCouponRepository) Query(ctx context.Context, filter *coupon.QueryCouponsModel) ([]coupon.Coupon, error) {
	builder := sq.Select(couponColumns...).
		From("coupons").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.ShopIds) > 0 {
		builder = builder.Where(sq.Eq{"shop_id": filter.ShopIds})
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
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var result []coupon.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		result = append(result, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// FindValid resolves the coupon a shopper may redeem for a product: the
// code matches, the product is eligible, the expiration date has not
// passed and the pool still has redemptions left.
func (r *PostgresCouponRepository) FindValid(ctx context.Context, code string, productID int64, now time.Time) (*coupon.Coupon, error) {
	query, args, err := sq.Select(couponColumns...).
		From("coupons").
		Where(sq.Eq{"code": code}).
		Where(sq.Expr("? = ANY(product_ids)", productID)).
		Where(sq.GtOrEq{"expiration_date": now}).
		Where(sq.Gt{"num_of_coupons": 0}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	c, err := scanCoupon(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrCouponNotFound
		}

		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return c, nil
}

// Redeem takes up to want redemptions from the coupon's pool in a single
// statement. The row lock in the CTE makes concurrent redemptions of the
// same coupon serialize, so the pool never goes negative and the caller
// learns exactly how many units it was granted.
func (r *PostgresCouponRepository) Redeem(ctx context.Context, id int64, want int) (int, int, error) {
	const query = `
		WITH pool AS (
			SELECT id, LEAST(num_of_coupons, $2::int) AS take
			FROM coupons
			WHERE id = $1
			FOR UPDATE
		)
		UPDATE coupons c
		SET num_of_coupons = c.num_of_coupons - pool.take,
		    updated_at = now()
		FROM pool
		WHERE c.id = pool.id
		RETURNING pool.take, c.num_of_coupons
	`

	var taken, remaining int
	if err := r.conn.QueryRow(ctx, query, id, want).Scan(&taken, &remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, apperror.ErrCouponNotFound
		}

		return 0, 0, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	return taken, remaining, nil
}

// Delete removes a coupon.
func (r *PostgresCouponRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("coupons").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrCouponNotFound
	}

	return nil
}

func scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
	)

	err := row.Scan(
		&c.ID,
		&c.ShopID,
		&c.Code,
		&discountType,
		&c.DiscountValue,
		&c.NumOfCoupons,
		&c.ExpirationDate,
		&c.ProductIDs,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DiscountType = coupon.DiscountType(discountType)

	return &c, nil
}
