package createcoupon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/coupon"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

type service interface {
	Create(ctx context.Context, shopID int64, c coupon.Coupon) (*coupon.Coupon, error)
}

// createCouponRequest represents a new coupon from a seller.
type createCouponRequest struct {
	Code           string    `json:"code"           validate:"required"`
	DiscountType   string    `json:"discountType"   validate:"required"`
	DiscountValue  float64   `json:"discountValue"  validate:"gt=0"`
	NumOfCoupons   int       `json:"numOfCoupons"   validate:"gte=0"`
	ExpirationDate time.Time `json:"expirationDate" validate:"required"`
	Products       []int64   `json:"products"       validate:"required,min=1,dive,gt=0"`
}

func (r *createCouponRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createCouponRequest) toModel() coupon.Coupon {
	return coupon.Coupon{
		Code:           r.Code,
		DiscountType:   coupon.DiscountType(r.DiscountType),
		DiscountValue:  r.DiscountValue,
		NumOfCoupons:   r.NumOfCoupons,
		ExpirationDate: r.ExpirationDate,
		ProductIDs:     r.Products,
	}
}

type createCouponResponse struct {
	Success bool          `json:"success"`
	Coupon  coupon.Coupon `json:"coupon"`
}

// CreateCoupon handles new coupon creation by a seller.
func CreateCoupon(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok || who.Role != identity.RoleSeller {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	req := createCouponRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperror.Validation("Invalid request body"))
		slog.Error("Error decoding create coupon request", "error", err)

		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, apperror.Validation(err.Error()))

		return
	}

	c, err := svc.Create(r.Context(), who.ShopID, req.toModel())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating coupon", "error", err, "shop_id", who.ShopID)

		return
	}

	respond.JSON(w, http.StatusCreated, createCouponResponse{
		Success: true,
		Coupon:  *c,
	})
}
