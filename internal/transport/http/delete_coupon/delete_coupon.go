package deletecoupon

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
	Delete(ctx context.Context, shopID, id int64) error
}

type deleteCouponResponse struct {
	Success bool `json:"success"`
}

// DeleteCoupon handles seller coupon removal.
func DeleteCoupon(w http.ResponseWriter, r *http.Request, svc service) {
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

	if err := svc.Delete(r.Context(), who.ShopID, id); err != nil {
		respond.Error(w, err)
		slog.Error("Error deleting coupon", "error", err, "coupon_id", id)

		return
	}

	respond.JSON(w, http.StatusOK, deleteCouponResponse{Success: true})
}
