package checkoutsvc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftora/marketplace/internal/dal/interfaces/icoupon"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorder"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorderitem"
	"github.com/craftora/marketplace/internal/dal/interfaces/ioutbox"
	"github.com/craftora/marketplace/internal/dal/interfaces/iproduct"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/models/orderevent"
	"github.com/craftora/marketplace/internal/service/models/orderitem"
	"github.com/craftora/marketplace/internal/service/models/outbox"
	"github.com/craftora/marketplace/internal/service/models/product"
)

type fakeOrderRepo struct {
	nextID int64
	orders []order.Order
}

func (f *fakeOrderRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	f.nextID++
	o.ID = f.nextID
	f.orders = append(f.orders, o)

	return &o, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	for i := range f.orders {
		if f.orders[i].ID == id {
			o := f.orders[i]

			return &o, nil
		}
	}

	return nil, apperror.ErrOrderNotFound
}

func (f *fakeOrderRepo) Query(_ context.Context, _ *order.QueryOrdersModel) ([]order.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderRepo) UpdateTotals(_ context.Context, o *order.Order) error {
	for i := range f.orders {
		if f.orders[i].ID == o.ID {
			f.orders[i] = *o
		}
	}

	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, _ int64, _ order.Status, _ *time.Time) error {
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

type fakeOrderItemRepo struct {
	nextID int64
	items  []orderitem.OrderItem
}

func (f *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	out := make([]orderitem.OrderItem, len(items))
	for i, item := range items {
		f.nextID++
		item.ID = f.nextID
		f.items = append(f.items, item)
		out[i] = item
	}

	return out, nil
}

func (f *fakeOrderItemRepo) QueryByOrderIDs(_ context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	var out []orderitem.OrderItem
	for _, item := range f.items {
		for _, id := range orderIDs {
			if item.OrderID == id {
				out = append(out, item)
			}
		}
	}

	return out, nil
}

func (f *fakeOrderItemRepo) DeleteByOrderID(_ context.Context, _ int64) error {
	return nil
}

type fakeCouponRepo struct {
	coupons []coupon.Coupon
}

func (f *fakeCouponRepo) Insert(_ context.Context, c coupon.Coupon) (*coupon.Coupon, error) {
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

func (f *fakeCouponRepo) Query(_ context.Context, _ *coupon.QueryCouponsModel) ([]coupon.Coupon, error) {
	return f.coupons, nil
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

func (f *fakeCouponRepo) Redeem(_ context.Context, id int64, want int) (int, int, error) {
	for i := range f.coupons {
		if f.coupons[i].ID != id {
			continue
		}
		taken := want
		if f.coupons[i].NumOfCoupons < taken {
			taken = f.coupons[i].NumOfCoupons
		}
		f.coupons[i].NumOfCoupons -= taken

		return taken, f.coupons[i].NumOfCoupons, nil
	}

	return 0, 0, apperror.ErrCouponNotFound
}

func (f *fakeCouponRepo) Delete(_ context.Context, _ int64) error {
	return nil
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

func (f *fakeProductRepo) DecrementStock(_ context.Context, id int64, qty int) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok || p.Stock == 0 {
		return nil, apperror.ErrResourceExhausted
	}
	p.Stock -= qty
	p.Sold += int64(qty)
	cp := *p

	return &cp, nil
}

type fakeOutboxRepo struct {
	messages []outbox.Message
}

func (f *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	f.messages = append(f.messages, msg)

	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.Message, error) {
	return f.messages, nil
}

func (f *fakeOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

func (f *fakeOutboxRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

type fakeUnitOfWork struct {
	orders   *fakeOrderRepo
	items    *fakeOrderItemRepo
	coupons  *fakeCouponRepo
	products *fakeProductRepo
	outbox   *fakeOutboxRepo

	begun      bool
	committed  bool
	rolledBack bool
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		orders:   &fakeOrderRepo{},
		items:    &fakeOrderItemRepo{},
		coupons:  &fakeCouponRepo{},
		products: &fakeProductRepo{products: map[int64]*product.Product{}},
		outbox:   &fakeOutboxRepo{},
	}
}

func (f *fakeUnitOfWork) Begin(_ context.Context) error {
	f.begun = true

	return nil
}

func (f *fakeUnitOfWork) Commit(_ context.Context) error {
	f.committed = true

	return nil
}

func (f *fakeUnitOfWork) Rollback(_ context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}

	return nil
}

func (f *fakeUnitOfWork) OrderRepository() iorder.Repository         { return f.orders }
func (f *fakeUnitOfWork) OrderItemRepository() iorderitem.Repository { return f.items }
func (f *fakeUnitOfWork) CouponRepository() icoupon.Repository       { return f.coupons }
func (f *fakeUnitOfWork) ProductRepository() iproduct.Repository     { return f.products }
func (f *fakeUnitOfWork) OutboxRepository() ioutbox.Repository       { return f.outbox }

type fakePublisher struct {
	published [][]order.Order
}

func (f *fakePublisher) PublishCreated(_ context.Context, orders []order.Order) error {
	f.published = append(f.published, orders)

	return nil
}

func newTestService(work *fakeUnitOfWork, opts ...option) *CheckoutService {
	base := []option{
		WithUnitOfWorkFactory(func() unitOfWork { return work }),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	}

	return MustNewCheckoutService(append(base, opts...)...)
}

func TestCreateOrder_SingleSellerTotals(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Name: "Waffle", Price: 22.99, Stock: 10}

	svc := newTestService(work)

	got, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Name: "Waffle", Price: 22.99, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 0, got.ShopID)
	assert.Equal(t, 68.97, got.ItemsPrice)
	require.NotNil(t, got.TaxPrice)
	require.NotNil(t, got.ShippingPrice)
	assert.Equal(t, 6.9, *got.TaxPrice)
	assert.Equal(t, 10.0, *got.ShippingPrice)
	assert.Equal(t, 0.0, got.TotalDiscount)
	assert.Equal(t, 85.87, got.TotalPrice)
	assert.Equal(t, order.StatusProcessing, got.Status)

	require.Len(t, work.orders.orders, 2)
	seller := work.orders.orders[1]
	assert.EqualValues(t, 7, seller.ShopID)
	assert.Equal(t, 68.97, seller.ItemsPrice)
	assert.Nil(t, seller.TaxPrice)
	assert.Nil(t, seller.ShippingPrice)
	assert.Equal(t, 68.97, seller.TotalPrice)

	assert.True(t, work.begun)
	assert.True(t, work.committed)
	assert.False(t, work.rolledBack)
}

func TestCreateOrder_SplitsCartAcrossSellers(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 5, Stock: 10}
	work.products.products[2] = &product.Product{ID: 2, ShopID: 9, Price: 3, Stock: 10}
	work.products.products[3] = &product.Product{ID: 3, ShopID: 7, Price: 2, Stock: 10}

	svc := newTestService(work)

	got, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 5, Quantity: 1},
			{ProductID: 2, Price: 3, Quantity: 1},
			{ProductID: 3, Price: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, work.orders.orders, 3)
	assert.EqualValues(t, 0, work.orders.orders[0].ShopID)
	assert.EqualValues(t, 7, work.orders.orders[1].ShopID)
	assert.EqualValues(t, 9, work.orders.orders[2].ShopID)

	assert.Len(t, got.OrderItems, 3)
	assert.Len(t, work.orders.orders[1].OrderItems, 2)
	assert.Len(t, work.orders.orders[2].OrderItems, 1)
}

func TestCreateOrder_PoolLimitedAmountCoupon(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99, Stock: 10}
	work.coupons.coupons = []coupon.Coupon{{
		ID:             11,
		ShopID:         7,
		Code:           "SAVE-MORE-NOWW",
		DiscountType:   coupon.DiscountAmount,
		DiscountValue:  20,
		NumOfCoupons:   2,
		ExpirationDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ProductIDs:     []int64{1},
	}}

	svc := newTestService(work)

	got, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 22.99, Quantity: 3, CouponCode: "SAVE-MORE-NOWW"},
		},
	})
	require.NoError(t, err)

	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, 2, got.OrderItems[0].CouponsUsed)
	assert.Equal(t, 40.0, got.OrderItems[0].DiscountAmount)
	assert.Equal(t, 40.0, got.TotalDiscount)
	// 68.97 + 6.90 + 10 - 40
	assert.Equal(t, 45.87, got.TotalPrice)
	assert.Equal(t, 0, work.coupons.coupons[0].NumOfCoupons)

	// Pool drained by the consolidated pass: the seller sub-order gets no
	// discount and no error.
	seller := work.orders.orders[1]
	assert.Equal(t, 0.0, seller.TotalDiscount)
	assert.Equal(t, 68.97, seller.TotalPrice)
}

func TestCreateOrder_PercentageCoupon(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99, Stock: 10}
	work.coupons.coupons = []coupon.Coupon{{
		ID:             11,
		ShopID:         7,
		Code:           "TENP-ERCE-NTOF",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  10,
		NumOfCoupons:   100,
		ExpirationDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ProductIDs:     []int64{1},
	}}

	svc := newTestService(work)

	got, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 22.99, Quantity: 1, CouponCode: "TENP-ERCE-NTOF"},
		},
	})
	require.NoError(t, err)

	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, 2.3, got.OrderItems[0].DiscountAmount)
}

func TestCreateOrder_DecrementsStockOnlyForConsolidatedOrder(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99, Stock: 5}

	svc := newTestService(work)

	_, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 22.99, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, work.products.products[1].Stock)
	assert.EqualValues(t, 3, work.products.products[1].Sold)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	svc := newTestService(newFakeUnitOfWork())

	_, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateOrder_UnknownCouponAbortsBeforeAnyWrite(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99, Stock: 10}

	svc := newTestService(work)

	_, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 22.99, Quantity: 1, CouponCode: "NOPE-NOPE-NOPE"},
		},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidCoupon)
	assert.False(t, work.begun)
	assert.Empty(t, work.orders.orders)
}

func TestCreateOrder_OutOfStockProduct(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99, Stock: 0}

	svc := newTestService(work)

	_, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 22.99, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestCreateOrder_EnqueuesCreatedEventAndPublishes(t *testing.T) {
	work := newFakeUnitOfWork()
	work.products.products[1] = &product.Product{ID: 1, ShopID: 7, Price: 22.99, Stock: 10}
	publisher := &fakePublisher{}

	svc := newTestService(work, WithEventsPublisher(publisher))

	got, err := svc.CreateOrder(context.Background(), 42, CheckoutRequest{
		Items: []CartItem{
			{ProductID: 1, Price: 22.99, Quantity: 3},
		},
	})
	require.NoError(t, err)

	require.Len(t, work.outbox.messages, 1)
	msg := work.outbox.messages[0]
	assert.Equal(t, "marketplace.order.created", msg.QueueName)

	var event orderevent.OrderCreated
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.Equal(t, got.ID, event.OrderID)
	assert.EqualValues(t, 42, event.UserID)
	assert.Equal(t, 85.87, event.TotalPrice)

	require.Len(t, publisher.published, 1)
	assert.Len(t, publisher.published[0], 2)
}
