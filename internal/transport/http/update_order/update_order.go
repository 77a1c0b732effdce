package updateorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	UpdateStatus(ctx context.Context, who identity.Identity, id int64, status order.Status) (*order.Order, error)
}

// updateOrderRequest carries the requested status transition.
type updateOrderRequest struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

func (r *updateOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

type updateOrderResponse struct {
	Success bool        `json:"success"`
	Order   order.Order `json:"order"`
}

// UpdateOrder handles the seller's status transition.
func UpdateOrder(w http.ResponseWriter, r *http.Request, svc service) {
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

	req := updateOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperror.Validation("Invalid request body"))
		slog.Error("Error decoding update order request", "error", err)

		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, apperror.Validation(err.Error()))

		return
	}

	status, err := order.ParseStatus(req.OrderStatus)
	if err != nil {
		respond.Error(w, apperror.Validation(err.Error()))

		return
	}

	o, err := svc.UpdateStatus(r.Context(), who, id, status)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error updating order status", "error", err, "order_id", id)

		return
	}

	respond.JSON(w, http.StatusOK, updateOrderResponse{
		Success: true,
		Order:   *o,
	})
}
