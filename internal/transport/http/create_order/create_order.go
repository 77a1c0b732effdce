package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/craftora/marketplace/internal/service/models/apperror"
	"github.com/craftora/marketplace/internal/service/models/identity"
	"github.com/craftora/marketplace/internal/service/models/order"
	"github.com/craftora/marketplace/internal/service/services/checkoutsvc"
	"github.com/craftora/marketplace/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, userID int64, req checkoutsvc.CheckoutRequest) (*order.Order, error)
}

// itemInCreateOrderRequest represents a cart line in a checkout request.
type itemInCreateOrderRequest struct {
	ProductID  int64   `json:"product"    validate:"gt=0"`
	Name       string  `json:"name"       validate:"required"`
	Price      float64 `json:"price"      validate:"gt=0"`
	Quantity   int     `json:"quantity"   validate:"gt=0"`
	Image      string  `json:"image"`
	CouponCode string  `json:"couponCode"`
}

type shippingInfoInRequest struct {
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	Country    string `json:"country"    validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	PhoneNo    string `json:"phoneNo"    validate:"required"`
}

type paymentInfoInRequest struct {
	ID     string `json:"id"     validate:"required"`
	Status string `json:"status" validate:"required"`
}

// createOrderRequest represents a checkout request.
type createOrderRequest struct {
	OrderItems   []itemInCreateOrderRequest `json:"orderItems"   validate:"required,min=1,dive"`
	ShippingInfo shippingInfoInRequest      `json:"shippingInfo" validate:"required"`
	PaymentInfo  paymentInfoInRequest       `json:"paymentInfo"  validate:"required"`
}

// Validate validates the checkout request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toModel() checkoutsvc.CheckoutRequest {
	items := make([]checkoutsvc.CartItem, len(r.OrderItems))
	for i, item := range r.OrderItems {
		items[i] = checkoutsvc.CartItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Image:      item.Image,
			CouponCode: item.CouponCode,
		}
	}

	return checkoutsvc.CheckoutRequest{
		Items: items,
		ShippingInfo: order.ShippingInfo{
			Address:    r.ShippingInfo.Address,
			City:       r.ShippingInfo.City,
			Country:    r.ShippingInfo.Country,
			PostalCode: r.ShippingInfo.PostalCode,
			PhoneNo:    r.ShippingInfo.PhoneNo,
		},
		PaymentInfo: order.PaymentInfo{
			ID:     r.PaymentInfo.ID,
			Status: r.PaymentInfo.Status,
		},
	}
}

// createOrderResponse wraps the consolidated order.
type createOrderResponse struct {
	Success   bool        `json:"success"`
	UserOrder order.Order `json:"userOrder"`
}

// CreateOrder handles the checkout request.
func CreateOrder(w http.ResponseWriter, r *http.Request, svc service) {
	who, ok := identity.FromContext(r.Context())
	if !ok {
		respond.Error(w, apperror.ErrForbidden)

		return
	}

	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperror.Validation("Invalid request body"))
		slog.Error("Error decoding checkout request body", "error", err)

		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, apperror.Validation(err.Error()))
		slog.Error("Error validating checkout request", "error", err)

		return
	}

	userOrder, err := svc.CreateOrder(r.Context(), who.UserID, req.toModel())
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating order", "error", err, "user_id", who.UserID)

		return
	}

	respond.JSON(w, http.StatusCreated, createOrderResponse{
		Success:   true,
		UserOrder: *userOrder,
	})
}
