package checkoutsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/craftora/marketplace/internal/dal/interfaces/icoupon"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorder"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorderitem"
	"github.com/craftora/marketplace/internal/dal/interfaces/ioutbox"
	"github.com/craftora/marketplace/internal/dal/interfaces/iproduct"
	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/dal/uow"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/money"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/models/orderevent"
	"github.com/craftora/marketplace/internal/service/models/orderitem"
	"github.com/craftora/marketplace/internal/service/models/outbox"
)

const (
	taxRate      = 0.10
	shippingFlat = 10.0

	orderCreatedQueue = "marketplace.order.created"
	outboxMaxRetries  = 5
)

// CartItem is one line of an incoming checkout request. Name, price and
// image are the cart snapshot the buyer saw; price is stored as-is, not
// re-read from the catalog.
type CartItem struct {
	ProductID  int64
	Name       string
	Price      float64
	Quantity   int
	Image      string
	CouponCode string
}

// CheckoutRequest is the validated input of CreateOrder.
type CheckoutRequest struct {
	Items        []CartItem
	ShippingInfo order.ShippingInfo
	PaymentInfo  order.PaymentInfo
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorder.Repository
	OrderItemRepository() iorderitem.Repository
	CouponRepository() icoupon.Repository
	ProductRepository() iproduct.Repository
	OutboxRepository() ioutbox.Repository
}

// eventsPublisher is the best-effort direct notification channel; the
// outbox remains the reliable one.
type eventsPublisher interface {
	PublishCreated(ctx context.Context, orders []order.Order) error
}

// CheckoutService turns a multi-seller cart into one consolidated order
// plus per-seller sub-orders, consuming coupon redemptions and stock along
// the way. All writes of one checkout share a single transaction.
type CheckoutService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	events     eventsPublisher
	now        func() time.Time
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("checkoutsvc: postgres client is not configured")
		}
		s.uowFactory = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the CheckoutService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CheckoutService) {
		s.pgClient = pgClient
	}
}

// WithEventsPublisher sets the direct order event publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventsPublisher(events eventsPublisher) option {
	return func(s *CheckoutService) {
		s.events = events
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *CheckoutService) {
		s.uowFactory = factory
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// shopGroup is one seller's slice of the cart, in input order.
type shopGroup struct {
	shopID int64
	items  []CartItem
}

// CreateOrder runs the whole checkout: validate and split the cart, create
// and price the consolidated order, then one sub-order per seller, then
// enqueue the created event. Any failure rolls the entire checkout back.
func (s *CheckoutService) CreateOrder(ctx context.Context, userID int64, req CheckoutRequest) (*order.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("Order must contain at least one item")
	}

	work := s.uowFactory()

	groups, err := s.splitCart(ctx, work, req.Items)
	if err != nil {
		return nil, err
	}

	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.Error("Checkout rollback failed", "error", err)
		}
	}()

	now := s.now()

	userOrder, err := s.createPricedOrder(ctx, work, userID, 0, req, req.Items, now)
	if err != nil {
		return nil, err
	}

	created := []order.Order{*userOrder}
	for _, group := range groups {
		sellerOrder, err := s.createPricedOrder(ctx, work, userID, group.shopID, req, group.items, now)
		if err != nil {
			return nil, err
		}
		created = append(created, *sellerOrder)
	}

	if err := s.enqueueCreatedEvent(ctx, work, userOrder, now); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit checkout transaction: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishCreated(ctx, created); err != nil {
			slog.Error("Failed to publish order created events", "error", err, "order_id", userOrder.ID)
		}
	}

	return userOrder, nil
}

// splitCart validates every line item and partitions the cart by seller,
// preserving input order within each group. It is read-only: a bad item
// aborts the checkout before anything is persisted.
func (s *CheckoutService) splitCart(ctx context.Context, work unitOfWork, items []CartItem) ([]shopGroup, error) {
	now := s.now()

	var groups []shopGroup
	groupIdx := make(map[int64]int)

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperror.Validation("Item quantity must be positive")
		}

		if item.CouponCode != "" {
			if _, err := work.CouponRepository().FindValid(ctx, item.CouponCode, item.ProductID, now); err != nil {
				if errors.Is(err, apperror.ErrCouponNotFound) {
					return nil, apperror.ErrInvalidCoupon
				}

				return nil, err
			}
		}

		p, err := work.ProductRepository().GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Stock == 0 {
			return nil, apperror.ErrProductNotFound
		}

		idx, ok := groupIdx[p.ShopID]
		if !ok {
			idx = len(groups)
			groupIdx[p.ShopID] = idx
			groups = append(groups, shopGroup{shopID: p.ShopID})
		}
		groups[idx].items = append(groups[idx].items, item)
	}

	return groups, nil
}

// createPricedOrder persists an order skeleton, runs the price calculator
// over it (mutating the coupon ledger, and the stock ledger for the
// consolidated order), then persists the computed totals and line items.
func (s *CheckoutService) createPricedOrder(
	ctx context.Context,
	work unitOfWork,
	userID int64,
	shopID int64,
	req CheckoutRequest,
	items []CartItem,
	now time.Time,
) (*order.Order, error) {
	o := &order.Order{
		UserID:       userID,
		ShopID:       shopID,
		ShippingInfo: req.ShippingInfo,
		PaymentInfo:  req.PaymentInfo,
		Status:       order.StatusProcessing,
		PaidAt:       now,
		CreatedAt:    now,
		UpdatedAt:    now,
		OrderItems:   make([]orderitem.OrderItem, len(items)),
	}
	for i, item := range items {
		o.OrderItems[i] = orderitem.OrderItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Image:      item.Image,
			CouponCode: item.CouponCode,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	inserted, err := work.OrderRepository().Insert(ctx, *o)
	if err != nil {
		return nil, err
	}
	o.ID = inserted.ID

	if err := s.priceOrder(ctx, work, o); err != nil {
		return nil, err
	}

	if err := work.OrderRepository().UpdateTotals(ctx, o); err != nil {
		return nil, err
	}

	for i := range o.OrderItems {
		o.OrderItems[i].OrderID = o.ID
	}
	o.OrderItems, err = work.OrderItemRepository().BulkInsert(ctx, o.OrderItems)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// priceOrder computes itemsPrice, tax, shipping, discount and total for one
// order. Every accumulation rounds to 2 decimals; the policy is round-early,
// so intermediate figures are exact cents.
//
// Coupons are re-resolved per item and redeemed against the live pool, so a
// pool shared by several lines (or by the consolidated order and a seller
// sub-order) drains item by item and never overshoots. Stock moves only for
// the consolidated order; sub-orders describe the same physical units.
func (s *CheckoutService) priceOrder(ctx context.Context, work unitOfWork, o *order.Order) error {
	isSellerOrder := o.IsSellerOrder()

	itemsPrice := 0.0
	for i := range o.OrderItems {
		item := &o.OrderItems[i]
		itemsPrice = money.Round2(itemsPrice + money.Round2(item.Price*float64(item.Quantity)))
	}
	o.ItemsPrice = itemsPrice

	if !isSellerOrder {
		tax := money.Round2(itemsPrice * taxRate)
		shipping := shippingFlat
		o.TaxPrice = &tax
		o.ShippingPrice = &shipping
	}

	totalDiscount := 0.0
	for i := range o.OrderItems {
		item := &o.OrderItems[i]

		if item.CouponCode != "" {
			discount, err := s.redeemCoupon(ctx, work, item)
			if err != nil {
				return err
			}
			totalDiscount = money.Round2(totalDiscount + discount)
		}

		if !isSellerOrder {
			if _, err := work.ProductRepository().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}
	o.TotalDiscount = totalDiscount

	total := itemsPrice - totalDiscount
	if !isSellerOrder {
		total += *o.TaxPrice + *o.ShippingPrice
	}
	o.TotalPrice = money.Round2(total)

	return nil
}

// redeemCoupon resolves the item's coupon against the current pool state
// and consumes up to the item quantity. A coupon that no longer resolves
// (earlier items in this checkout drained the pool) is not an error: the
// line simply gets no discount.
func (s *CheckoutService) redeemCoupon(ctx context.Context, work unitOfWork, item *orderitem.OrderItem) (float64, error) {
	c, err := work.CouponRepository().FindValid(ctx, item.CouponCode, item.ProductID, s.now())
	if err != nil {
		if errors.Is(err, apperror.ErrCouponNotFound) {
			return 0, nil
		}

		return 0, err
	}

	taken, _, err := work.CouponRepository().Redeem(ctx, c.ID, item.Quantity)
	if err != nil {
		return 0, err
	}

	item.CouponsUsed = taken

	var discount float64
	switch c.DiscountType {
	case coupon.DiscountAmount:
		discount = money.Round2(c.DiscountValue * float64(taken))
	case coupon.DiscountPercentage:
		discount = money.Round2(c.DiscountValue / 100 * item.Price * float64(taken))
	}
	item.DiscountAmount = discount

	return discount, nil
}

// enqueueCreatedEvent writes the order-created event into the outbox inside
// the checkout transaction.
func (s *CheckoutService) enqueueCreatedEvent(ctx context.Context, work unitOfWork, o *order.Order, now time.Time) error {
	event := orderevent.OrderCreated{
		EventID:    uuid.New().String(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order created event: %w", err)
	}

	return work.OutboxRepository().Insert(ctx, outbox.Message{
		QueueName:   orderCreatedQueue,
		RoutingKey:  orderCreatedQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  outboxMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	})
}
