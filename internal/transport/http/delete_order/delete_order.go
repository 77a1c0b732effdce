package deleteorder

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	DeleteOrder(ctx context.Context, who identity.Identity, id int64) error
}

type deleteOrderResponse struct {
	Success bool `json:"success"`
}

// DeleteOrder handles order removal.
func DeleteOrder(w http.ResponseWriter, r *http.Request, svc service) {
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

	if err := svc.DeleteOrder(r.Context(), who, id); err != nil {
		respond.Error(w, err)
		slog.Error("Error deleting order", "error", err, "order_id", id)

		return
	}

	respond.JSON(w, http.StatusOK, deleteOrderResponse{Success: true})
}
