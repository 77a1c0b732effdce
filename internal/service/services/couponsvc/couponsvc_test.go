package couponsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftora/marketplace/internal/dal/interfaces/iattempt"
	"github.com/craftora/marketplace/internal/dal/interfaces/icoupon"
	"github.com/craftora/marketplace/internal/dal/interfaces/iproduct"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/attempt"
	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/product"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeCouponRepo struct {
	nextID  int64
	coupons []coupon.Coupon
}

func (f *fakeCouponRepo) Insert(_ context.Context, c coupon.Coupon) (*coupon.Coupon, error) {
	for _, existing := range f.coupons {
		if existing.ShopID == c.ShopID && existing.Code == c.Code {
			return nil, apperror.ErrDuplicateCoupon
		}
	}
	f.nextID++
	c.ID = f.nextID
	f.coupons = append(f.coupons, c)

	return &c, nil
}

func (f *fakeCouponRepo) GetByID(_ context.Context, id int64) (*coupon.Coupon, error) {
	for i := range f.coupons {
		if f.coupons[i].ID == id {
			c := f.coupons[i]

			return &c, nil
		}
	}

	return nil, apperror.ErrCouponNotFound
}

func (f *fakeCouponRepo) Query(_ context.Context, filter *coupon.QueryCouponsModel) ([]coupon.Coupon, error) {
	var out []coupon.Coupon
	for _, c := range f.coupons {
		for _, shopID := range filter.ShopIds {
			if c.ShopID == shopID {
				out = append(out, c)
			}
		}
	}

	return out, nil
}

func (f *fakeCouponRepo) FindValid(_ context.Context, code string, productID int64, now time.Time) (*coupon.Coupon, error) {
	for i := range f.coupons {
		c := f.coupons[i]
		if c.Code != code || c.NumOfCoupons <= 0 || c.ExpirationDate.Before(now) {
			continue
		}
		for _, id := range c.ProductIDs {
			if id == productID {
				return &c, nil
			}
		}
	}

	return nil, apperror.ErrCouponNotFound
}

func (f *fakeCouponRepo) Redeem(_ context.Context, _ int64, _ int) (int, int, error) {
	return 0, 0, nil
}

func (f *fakeCouponRepo) Delete(_ context.Context, id int64) error {
	for i := range f.coupons {
		if f.coupons[i].ID == id {
			f.coupons = append(f.coupons[:i], f.coupons[i+1:]...)

			return nil
		}
	}

	return apperror.ErrCouponNotFound
}

type fakeProductRepo struct {
	products map[int64]*product.Product
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperror.ErrProductNotFound
	}
	cp := *p

	return &cp, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, _ int64, _ int) (*product.Product, error) {
	return nil, apperror.ErrResourceExhausted
}

type fakeAttemptRepo struct {
	attempts map[int64]attempt.CouponAttempt
}

func (f *fakeAttemptRepo) Get(_ context.Context, userID int64) (*attempt.CouponAttempt, error) {
	if a, ok := f.attempts[userID]; ok {
		return &a, nil
	}

	return &attempt.CouponAttempt{UserID: userID}, nil
}

func (f *fakeAttemptRepo) Upsert(_ context.Context, a attempt.CouponAttempt) error {
	f.attempts[a.UserID] = a

	return nil
}

func (f *fakeAttemptRepo) Clear(_ context.Context, userID int64) error {
	delete(f.attempts, userID)

	return nil
}

type fakeUnitOfWork struct {
	coupons  *fakeCouponRepo
	products *fakeProductRepo
	attempts *fakeAttemptRepo
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		coupons:  &fakeCouponRepo{},
		products: &fakeProductRepo{products: map[int64]*product.Product{}},
		attempts: &fakeAttemptRepo{attempts: map[int64]attempt.CouponAttempt{}},
	}
}

func (f *fakeUnitOfWork) CouponRepository() icoupon.Repository   { return f.coupons }
func (f *fakeUnitOfWork) ProductRepository() iproduct.Repository { return f.products }
func (f *fakeUnitOfWork) AttemptRepository() iattempt.Repository { return f.attempts }

func newTestService(work *fakeUnitOfWork) *CouponService {
	return MustNewCouponService(
		WithUnitOfWorkFactory(func() unitOfWork { return work }),
		WithClock(func() time.Time { return testNow }),
	)
}

func validCoupon() coupon.Coupon {
	return coupon.Coupon{
		Code:           "SUMM-ER25-SALE",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  10,
		NumOfCoupons:   50,
		ExpirationDate: testNow.Add(30 * 24 * time.Hour),
		ProductIDs:     []int64{1},
	}
}

func TestCreate_Validation(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99}
	svc := newTestService(work)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(c *coupon.Coupon)
	}{
		{
			name:   "malformed code",
			mutate: func(c *coupon.Coupon) { c.Code = "short" },
		},
		{
			name:   "no products",
			mutate: func(c *coupon.Coupon) { c.ProductIDs = nil },
		},
		{
			name:   "negative pool",
			mutate: func(c *coupon.Coupon) { c.NumOfCoupons = -1 },
		},
		{
			name:   "expiration in the past",
			mutate: func(c *coupon.Coupon) { c.ExpirationDate = testNow.Add(-time.Hour) },
		},
		{
			name:   "percentage over 100",
			mutate: func(c *coupon.Coupon) { c.DiscountValue = 150 },
		},
		{
			name: "amount above product price",
			mutate: func(c *coupon.Coupon) {
				c.DiscountType = coupon.DiscountAmount
				c.DiscountValue = 50
			},
		},
		{
			name:   "unknown discount type",
			mutate: func(c *coupon.Coupon) { c.DiscountType = "half-off" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoupon()
			tt.mutate(&c)

			_, err := svc.Create(ctx, 7, c)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCreate_RejectsForeignProduct(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 99, Price: 22.99}
	svc := newTestService(work)

	_, err := svc.Create(context.Background(), 7, validCoupon())
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreate_DuplicateCode(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99}
	svc := newTestService(work)
	ctx := context.Background()

	_, err := svc.Create(ctx, 7, validCoupon())
	require.NoError(t, err)

	_, err = svc.Create(ctx, 7, validCoupon())
	assert.ErrorIs(t, err, apperror.ErrDuplicateCoupon)
}

func TestGet_ScopedToShop(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99}
	svc := newTestService(work)
	ctx := context.Background()

	created, err := svc.Create(ctx, 7, validCoupon())
	require.NoError(t, err)

	got, err := svc.Get(ctx, 7, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Code, got.Code)

	_, err = svc.Get(ctx, 8, created.ID)
	assert.ErrorIs(t, err, apperror.ErrCouponNotFound)
}

func TestDelete_ScopedToShop(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99}
	svc := newTestService(work)
	ctx := context.Background()

	created, err := svc.Create(ctx, 7, validCoupon())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 8, created.ID), apperror.ErrCouponNotFound)
	require.NoError(t, svc.Delete(ctx, 7, created.ID))
	assert.Empty(t, work.coupons.coupons)
}

func TestApply_SuccessClearsCounter(t *testing.T) {
	work := newFakeUnitOfWork()
	work.coupons.coupons = []coupon.Coupon{{
		ID:             1,
		ShopID:         7,
		Code:           "SUMM-ER25-SALE",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  10,
		NumOfCoupons:   5,
		ExpirationDate: testNow.Add(time.Hour),
		ProductIDs:     []int64{1},
	}}
	work.attempts.attempts[42] = attempt.CouponAttempt{UserID: 42, Count: 4, Expiry: testNow.Add(time.Hour)}

	svc := newTestService(work)

	got, err := svc.Apply(context.Background(), 42, 1, "SUMM-ER25-SALE")
	require.NoError(t, err)
	assert.Equal(t, "SUMM-ER25-SALE", got.Code)
	assert.NotContains(t, work.attempts.attempts, int64(42))
}

func TestApply_FailureCountsTowardLockout(t *testing.T) {
	work := newFakeUnitOfWork()
	svc := newTestService(work)
	ctx := context.Background()

	_, err := svc.Apply(ctx, 42, 1, "WRON-GCOD-E000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attempt 1/10")

	a := work.attempts.attempts[42]
	assert.Equal(t, 1, a.Count)
	assert.Equal(t, testNow.Add(attempt.Window), a.Expiry)
}

func TestApply_TenthFailureThenLockout(t *testing.T) {
	work := newFakeUnitOfWork()
	work.attempts.attempts[42] = attempt.CouponAttempt{UserID: 42, Count: 9, Expiry: testNow.Add(time.Hour)}
	svc := newTestService(work)
	ctx := context.Background()

	_, err := svc.Apply(ctx, 42, 1, "WRON-GCOD-E000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attempt 10/10")

	// Counter is full and the window has not elapsed: the next call is
	// rejected before any coupon lookup.
	_, err = svc.Apply(ctx, 42, 1, "SUMM-ER25-SALE")
	assert.ErrorIs(t, err, apperror.ErrAttemptLimitExceeded)
}

func TestApply_WindowExpiryResetsCounter(t *testing.T) {
	work := newFakeUnitOfWork()
	work.attempts.attempts[42] = attempt.CouponAttempt{UserID: 42, Count: 10, Expiry: testNow.Add(-time.Minute)}
	svc := newTestService(work)

	_, err := svc.Apply(context.Background(), 42, 1, "WRON-GCOD-E000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Attempt 1/10")

	a := work.attempts.attempts[42]
	assert.Equal(t, 1, a.Count)
	assert.Equal(t, testNow.Add(attempt.Window), a.Expiry)
}
