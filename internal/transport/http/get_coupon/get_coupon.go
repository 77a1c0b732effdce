package getcoupon

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	Get(ctx context.Context, shopID, id int64) (*coupon.Coupon, error)
}

type getCouponResponse struct {
	Success bool          `json:"success"`
	Coupon  coupon.Coupon `json:"coupon"`
}

// GetCoupon handles the seller's single-coupon read.
func GetCoupon(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok || who.Role != identity.RoleSeller {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, apperror.Validation("Invalid coupon id"))

		return
	}

	c, err := svc.Get(r.Context(), who.ShopID, id)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error getting coupon", "error", err, "coupon_id", id)

		return
	}

	respond.JSON(w, http.StatusOK, getCouponResponse{
		Success: true,
		Coupon:  *c,
	})
}
