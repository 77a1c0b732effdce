package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftora/marketplace/internal/dal/interfaces/iattempt"
	"github.com/craftora/marketplace/internal/dal/interfaces/icoupon"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorder"
	"github.com/craftora/marketplace/internal/dal/interfaces/iorderitem"
	"github.com/craftora/marketplace/internal/dal/interfaces/ioutbox"
	"github.com/craftora/marketplace/internal/dal/interfaces/iproduct"
	"github.com/craftora/marketplace/internal/dal/postgres"
	attemptrepo "github.com/craftora/marketplace/internal/dal/repositories/attempt/postgres"
	couponrepo "github.com/craftora/marketplace/internal/dal/repositories/coupon/postgres"
	orderrepo "github.com/craftora/marketplace/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/craftora/marketplace/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/craftora/marketplace/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/craftora/marketplace/internal/dal/repositories/product/postgres"
)

// unitOfWork groups the checkout repositories over one connection source.
// Before Begin the repositories run against the pool; after Begin they all
// share the same transaction until Commit or Rollback.
type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	orderRepo     iorder.Repository
	orderItemRepo iorderitem.Repository
	couponRepo    icoupon.Repository
	productRepo   iproduct.Repository
	attemptRepo   iattempt.Repository
	outboxRepo    ioutbox.Repository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	u := &unitOfWork{
		pool: client.Pool(),
	}
	u.bind(client.Pool())

	return u
}

func (u *unitOfWork) bind(conn postgres.Querier) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.couponRepo = couponrepo.NewPostgresCouponRepository(conn)
	u.productRepo = productrepo.NewPostgresProductRepository(conn)
	u.attemptRepo = attemptrepo.NewPostgresAttemptRepository(conn)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(conn)
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is safe to defer: after a successful Commit it is a no-op.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

func (u *unitOfWork) OrderRepository() iorder.Repository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitem.Repository {
	return u.orderItemRepo
}

func (u *unitOfWork) CouponRepository() icoupon.Repository {
	return u.couponRepo
}

func (u *unitOfWork) ProductRepository() iproduct.Repository {
	return u.productRepo
}

func (u *unitOfWork) AttemptRepository() iattempt.Repository {
	return u.attemptRepo
}

func (u *unitOfWork) OutboxRepository() ioutbox.Repository {
	return u.outboxRepo
}
