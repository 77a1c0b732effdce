package getorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	GetOrder(ctx context.Context, who identity.Identity, id int64) (*order.Order, error)
}

type getOrderResponse struct {
	Success bool        `json:"success"`
	Order   order.Order `json:"order"`
}

// GetOrder handles the single-order read.
func GetOrder(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, apperror.Validation("Invalid order id"))

		return
	}

	o, err := svc.GetOrder(r.Context(), who, id)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting order", "error", err, "order_id", id)

		return
	}

	respond.JSON(w, http.StatusOK, getOrderResponse{
		Success: true,
		Order:   *o,
	})
}
