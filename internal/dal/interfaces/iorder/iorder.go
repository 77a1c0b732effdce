package iorder

import (
	"context"
	"time"

	"github.com/craftora/marketplace/internal/service/models/order"
)

// Repository is an interface for the order postgres repository.
type Repository interface {
	Insert(ctx context.Context, o order.Order) (*order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	UpdateTotals(ctx context.Context, o *order.Order) error
	UpdateStatus(ctx context.Context, id int64, status order.Status, deliveredAt *time.Time) error
	Delete(ctx context.Context, id int64) error
}
