package applycoupon

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
	Apply(ctx context.Context, userID, productID int64, code string) (*coupon.Coupon, error)
}

type applyCouponRequest struct {
	ProductID int64  `schema:"productId,required"`
	Code      string `schema:"code,required"`
}

type applyCouponResponse struct {
	Success bool           `json:"success"`
	Coupon  *coupon.Coupon `json:"coupon"`
}

// ApplyCoupon pre-validates a coupon code against a product for a buyer.
// Failed lookups count toward the buyer's attempt window.
func ApplyCoupon(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	var req applyCouponRequest
	if err := schema.NewDecoder().Decode(&req, r.URL.Query()); err != nil {
		respond.Error(w, apperror.Validation("productId and code query parameters are required"))

		return
	}

	cpn, err := svc.Apply(r.Context(), who.UserID, req.ProductID, req.Code)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error applying coupon", "error", err, "user_id", who.UserID)

		return
	}

	respond.JSON(w, http.StatusOK, applyCouponResponse{Success: true, Coupon: cpn})
}
