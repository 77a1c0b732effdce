package iproduct

import (
	"context"

	"github.com/craftora/marketplace/internal/service/models/product"
)

// Repository is an interface for the product postgres repository.
//
// DecrementStock performs the fulfillment mutation stock -= qty,
// sold += qty as a single conditional update gated on stock <> 0, and
// returns apperror.ErrResourceExhausted when the gate rejects the row.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*product.Product, error)
	DecrementStock(ctx context.Context, id int64, qty int) (*product.Product, error)
}
