package listmyorders

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]order.Order, error)
}

type listOrdersRequest struct {
	Limit  int `schema:"limit,omitempty"`
	Offset int `schema:"offset,omitempty"`
}

type listOrdersResponse struct {
	Success bool          `json:"success"`
	Orders  []order.Order `json:"orders"`
}

// ListMyOrders handles the buyer's order listing.
func ListMyOrders(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	query := &listOrdersRequest{}
	if err := schema.NewDecoder().Decode(query, r.URL.Query()); err != nil {
		respond.Error(w, apperror.Validation("Invalid query parameters"))
		slog.Error("Error decoding list orders query", "error", err)

		return
	}

	orders, err := svc.ListUserOrders(r.Context(), who.UserID, query.Limit, query.Offset)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error listing user orders", "error", err, "user_id", who.UserID)

		return
	}

	respond.JSON(w, http.StatusOK, listOrdersResponse{
		Success: true,
		Orders:  orders,
	})
}
