package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/service/models/attempt"
)

// PostgresAttemptRepository persists per-shopper coupon attempt counters.
type PostgresAttemptRepository struct {
	conn postgres.Querier
}

func NewPostgresAttemptRepository(conn postgres.Querier) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{
		conn: conn,
	}
}

// Get returns the shopper's attempt counter, or a zero-count one when the
// shopper has never failed a validation.
func (r *PostgresAttemptRepository) Get(ctx context.Context, userID int64) (*attempt.CouponAttempt, error) {
	query, args, err := sq.Select("user_id", "attempt_count", "expiry").
		From("coupon_attempts").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var a attempt.CouponAttempt
	err = r.conn.QueryRow(ctx, query, args...).Scan(&a.UserID, &a.Count, &a.Expiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &attempt.CouponAttempt{UserID: userID, Expiry: time.Time{}}, nil
		}

		return nil, fmt.Errorf("failed to query coupon attempt: %w", err)
	}

	return &a, nil
}

// Upsert writes the counter state for the shopper.
func (r *PostgresAttemptRepository) Upsert(ctx context.Context, a attempt.CouponAttempt) error {
	query, args, err := sq.Insert("coupon_attempts").
		Columns("user_id", "attempt_count", "expiry").
		Values(a.UserID, a.Count, a.Expiry).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET attempt_count = EXCLUDED.attempt_count, expiry = EXCLUDED.expiry").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert coupon attempt: %w", err)
	}

	return nil
}

// Clear removes the counter after a successful validation.
func (r *PostgresAttemptRepository) Clear(ctx context.Context, userID int64) error {
	query, args, err := sq.Delete("coupon_attempts").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear coupon attempt: %w", err)
	}

	return nil
}
