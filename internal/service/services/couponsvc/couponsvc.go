package couponsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/craftora/marketplace/internal/dal/interfaces/iattempt"
	"github.com/craftora/marketplace/internal/dal/interfaces/icoupon"
	"github.com/craftora/marketplace/internal/dal/interfaces/iproduct"
	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/dal/uow"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/attempt"
	"github.com/craftora/marketplace/internal/service/models/coupon"
)

type unitOfWork interface {
	CouponRepository() icoupon.Repository
	ProductRepository() iproduct.Repository
	AttemptRepository() iattempt.Repository
}

// CouponService manages a shop's coupons and guards the buyer-facing
// apply-coupon validation behind the attempt rate limiter.
type CouponService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	now        func() time.Time
}

// option is a function that configures the CouponService.
type option func(*CouponService)

// MustNewCouponService creates a new CouponService.
func MustNewCouponService(opts ...option) *CouponService {
	s := &CouponService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("couponsvc: postgres client is not configured")
		}
		s.uowFactory = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CouponService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CouponService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *CouponService) {
		s.uowFactory = factory
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *CouponService) {
		s.now = now
	}
}

// Create validates and persists a new shop coupon.
func (s *CouponService) Create(ctx context.Context, shopID int64, c coupon.Coupon) (*coupon.Coupon, error) {
	if !coupon.ValidCode(c.Code) {
		return nil, apperror.Validation("Coupon code must match the XXXX-XXXX-XXXX format")
	}
	if len(c.ProductIDs) == 0 {
		return nil, apperror.Validation("Coupon must apply to at least one product")
	}
	if c.NumOfCoupons < 0 {
		return nil, apperror.Validation("Number of coupons must not be negative")
	}

	now := s.now()
	if !c.ExpirationDate.After(now) {
		return nil, apperror.Validation("Expiration date must be in the future")
	}

	switch c.DiscountType {
	case coupon.DiscountPercentage:
		if c.DiscountValue <= 0 || c.DiscountValue > 100 {
			return nil, apperror.Validation("Percentage discount must be between 0 and 100")
		}
	case coupon.DiscountAmount:
		if c.DiscountValue <= 0 {
			return nil, apperror.Validation("Amount discount must be positive")
		}
	default:
		return nil, apperror.Validation("Discount type must be percentage or amount")
	}

	work := s.uowFactory()

	for _, productID := range c.ProductIDs {
		p, err := work.ProductRepository().GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if p.ShopID != shopID {
			return nil, apperror.Validation(fmt.Sprintf("Product %d does not belong to this shop", productID))
		}
		if c.DiscountType == coupon.DiscountAmount && c.DiscountValue > p.Price {
			return nil, apperror.Validation(
				fmt.Sprintf("Amount discount exceeds the price of product %d", productID),
			)
		}
	}

	c.ShopID = shopID
	c.CreatedAt = now
	c.UpdatedAt = now

	return work.CouponRepository().Insert(ctx, c)
}

// List retrieves the shop's coupons.
func (s *CouponService) List(ctx context.Context, shopID int64, limit, offset int) ([]coupon.Coupon, error) {
	work := s.uowFactory()

	return work.CouponRepository().Query(ctx, &coupon.QueryCouponsModel{
		ShopIds: []int64{shopID},
		Limit:   limit,
		Offset:  offset,
	})
}

// Get retrieves one coupon, scoped to its shop.
func (s *CouponService) Get(ctx context.Context, shopID, id int64) (*coupon.Coupon, error) {
	work := s.uowFactory()

	c, err := work.CouponRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ShopID != shopID {
		return nil, apperror.ErrCouponNotFound
	}

	return c, nil
}

// Delete removes one coupon, scoped to its shop.
func (s *CouponService) Delete(ctx context.Context, shopID, id int64) error {
	if _, err := s.Get(ctx, shopID, id); err != nil {
		return err
	}

	work := s.uowFactory()

	return work.CouponRepository().Delete(ctx, id)
}

// Apply is the standalone coupon validity check, guarded by the per-shopper
// attempt counter. The guard runs before any coupon lookup: a locked-out
// shopper never reaches the ledger. Failed validations accumulate within a
// 7-day window that resets lazily on the first read after expiry; a
// successful validation clears the counter entirely.
func (s *CouponService) Apply(ctx context.Context, userID, productID int64, code string) (*coupon.Coupon, error) {
	now := s.now()
	work := s.uowFactory()

	a, err := work.AttemptRepository().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.Locked(now) {
		return nil, apperror.ErrAttemptLimitExceeded
	}

	c, err := work.CouponRepository().FindValid(ctx, code, productID, now)
	if err == nil {
		if clearErr := work.AttemptRepository().Clear(ctx, userID); clearErr != nil {
			return nil, clearErr
		}

		return c, nil
	}
	if !errors.Is(err, apperror.ErrCouponNotFound) {
		return nil, err
	}

	a.Count = a.Windowed(now)
	a.Count++
	if a.Count == 1 {
		a.Expiry = now.Add(attempt.Window)
	}

	if err := work.AttemptRepository().Upsert(ctx, *a); err != nil {
		return nil, err
	}

	return nil, apperror.InvalidCouponAttempt(a.Count, attempt.MaxAttempts)
}
