package iorderitem

import (
	"context"

	"github.com/craftora/marketplace/internal/service/models/orderitem"
)

// Repository is an interface for the order item postgres repository.
type Repository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	QueryByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
