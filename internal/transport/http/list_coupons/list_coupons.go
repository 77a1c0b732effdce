package listcoupons

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	List(ctx context.Context, shopID int64, limit, offset int) ([]coupon.Coupon, error)
}

type listCouponsRequest struct {
	Limit  int `schema:"limit,omitempty"`
	Offset int `schema:"offset,omitempty"`
}

type listCouponsResponse struct {
	Success bool            `json:"success"`
	Coupons []coupon.Coupon `json:"coupons"`
}

// ListCoupons handles the seller's coupon listing.
func ListCoupons(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok || who.Role != identity.RoleSeller {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	query := &listCouponsRequest{}
	if err := schema.NewDecoder().Decode(query, r.URL.Query()); err != nil {
		respond.Error(w, apperror.Validation("Invalid query parameters"))
		slog.Error("Error decoding list coupons query", "error", err)

		return
	}

	coupons, err := svc.List(r.Context(), who.ShopID, query.Limit, query.Offset)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error listing coupons", "error", err, "shop_id", who.ShopID)

		return
	}

	respond.JSON(w, http.StatusOK, listCouponsResponse{
		Success: true,
		Coupons: coupons,
	})
}
