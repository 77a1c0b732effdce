package ordersvc

import (
	"context"
	"time"

	"github.com/craftora/marketplace/internal/dal/interfaces/iorder"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorderitem"
	"github.com/craftora/marketplace/internal/dal/postgres"
	"github.com/craftora/marketplace/internal/dal/uow"
	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
)

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorder.Repository
	OrderItemRepository() iorderitem.Repository
}

// OrderService reads and mutates persisted orders. Reads never touch price
// fields; the only mutation after checkout is the fulfillment status.
type OrderService struct {
	pgClient   *postgres.Client
	uowFactory func() unitOfWork
	now        func() time.Time
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.uowFactory == nil {
		if s.pgClient == nil {
			panic("ordersvc: postgres client is not configured")
		}
		s.uowFactory = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides the unit-of-work source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// WithClock overrides the time source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// GetOrder retrieves one order with its items, scoped to the caller: the
// buyer who placed it or the seller it was split out for.
func (s *OrderService) GetOrder(ctx context.Context, who identity.Identity, id int64) (*order.Order, error) {
	work := s.uowFactory()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(who, o) {
		return nil, apperror.ErrOrderNotFound
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	return o, nil
}

// ListUserOrders retrieves the buyer's consolidated orders.
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]order.Order, error) {
	return s.list(ctx, &order.QueryOrdersModel{
		UserIds:          []int64{userID},
		ConsolidatedOnly: true,
		Limit:            limit,
		Offset:           offset,
	})
}

// ListShopOrders retrieves a seller's sub-orders.
func (s *OrderService) ListShopOrders(ctx context.Context, shopID int64, limit, offset int) ([]order.Order, error) {
	return s.list(ctx, &order.QueryOrdersModel{
		ShopIds: []int64{shopID},
		Limit:   limit,
		Offset:  offset,
	})
}

func (s *OrderService) list(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.uowFactory()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}
	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}

// UpdateStatus moves an order along Processing -> Shipped -> Delivered.
// A delivered order is final: any further transition is rejected and
// nothing is mutated.
func (s *OrderService) UpdateStatus(ctx context.Context, who identity.Identity, id int64, status order.Status) (*order.Order, error) {
	work := s.uowFactory()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(who, o) {
		return nil, apperror.ErrOrderNotFound
	}

	if o.Status == order.StatusDelivered {
		return nil, apperror.ErrInvalidStateTransition
	}

	var deliveredAt *time.Time
	if status == order.StatusDelivered {
		now := s.now()
		deliveredAt = &now
	}

	if err := work.OrderRepository().UpdateStatus(ctx, id, status, deliveredAt); err != nil {
		return nil, err
	}

	o.Status = status
	o.DeliveredAt = deliveredAt

	return o, nil
}

// DeleteOrder removes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, who identity.Identity, id int64) error {
	work := s.uowFactory()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canAccess(who, o) {
		return apperror.ErrOrderNotFound
	}

	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer work.Rollback(ctx) //nolint:errcheck

	if err := work.OrderItemRepository().DeleteByOrderID(ctx, id); err != nil {
		return err
	}
	if err := work.OrderRepository().Delete(ctx, id); err != nil {
		return err
	}

	return work.Commit(ctx)
}

// canAccess reports whether the caller may see the order: the owning buyer,
// or the seller the sub-order belongs to.
func canAccess(who identity.Identity, o *order.Order) bool {
	if who.Role == identity.RoleSeller {
		return o.ShopID != 0 && o.ShopID == who.ShopID
	}

	return o.UserID == who.UserID
}
