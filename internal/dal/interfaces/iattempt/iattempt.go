package iattempt

import (
	"context"

	"github.com/craftora/marketplace/internal/service/models/attempt"
)

// Repository is an interface for the coupon attempt postgres repository.
// Get returns a zero-count attempt when the shopper has no row yet.
type Repository interface {
	Get(ctx context.Context, userID int64) (*attempt.CouponAttempt, error)
	Upsert(ctx context.Context, a attempt.CouponAttempt) error
	Clear(ctx context.Context, userID int64) error
}
