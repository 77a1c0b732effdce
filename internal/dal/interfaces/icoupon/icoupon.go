package icoupon

import (
	"context"
	"time"

	"github.com/craftora/marketplace/internal/service/models/coupon"
)

// Repository is an interface for the coupon postgres repository.
//
// FindValid resolves a coupon by code that is eligible for the product,
// unexpired at now and has a non-empty redemption pool; it returns
// apperror.ErrCouponNotFound when no such coupon exists. Redeem atomically
// takes up to want units from the pool and reports how many were granted
// together with the remaining pool.
type Repository interface {
	Insert(ctx context.Context, c coupon.Coupon) (*coupon.Coupon, error)
	GetByID(ctx context.Context, id int64) (*coupon.Coupon, error)
	Query(ctx context.Context, filter *coupon.QueryCouponsModel) ([]coupon.Coupon, error)
	FindValid(ctx context.Context, code string, productID int64, now time.Time) (*coupon.Coupon, error)
	Redeem(ctx context.Context, id int64, want int) (taken int, remaining int, err error)
	Delete(ctx context.Context, id int64) error
}
