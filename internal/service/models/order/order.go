package order

import (
	"fmt"
	"time"

	"github.com/craftora/marketplace/internal/service/models/orderitem"
)

// Status is the fulfillment state of an order. Once an order reaches
// StatusDelivered no further transition is permitted.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

func (s Status) String() string {
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusShipped, StatusDelivered:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid order status: %q", s)
	}
}

// ShippingInfo is the delivery destination snapshot stored with the order.
type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	PhoneNo    string `json:"phoneNo"`
}

// PaymentInfo is the already-settled payment reference supplied at checkout.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Order is a purchase record. Two kinds share the shape: the consolidated
// buyer-facing order has ShopID == 0 and carries tax and shipping, while
// per-seller sub-orders have ShopID set and leave both unset.
type Order struct {
	ID            int64                 `json:"id"`
	UserID        int64                 `json:"userId"`
	ShopID        int64                 `json:"shopId,omitempty"`
	ShippingInfo  ShippingInfo          `json:"shippingInfo"`
	PaymentInfo   PaymentInfo           `json:"paymentInfo"`
	ItemsPrice    float64               `json:"itemsPrice"`
	TaxPrice      *float64              `json:"taxPrice,omitempty"`
	ShippingPrice *float64              `json:"shippingPrice,omitempty"`
	TotalDiscount float64               `json:"totalDiscount"`
	TotalPrice    float64               `json:"totalPrice"`
	Status        Status                `json:"orderStatus"`
	PaidAt        time.Time             `json:"paidAt"`
	DeliveredAt   *time.Time            `json:"deliveredAt,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	OrderItems    []orderitem.OrderItem `json:"orderItems"`
}

// IsSellerOrder reports whether the order is a per-seller sub-order.
func (o *Order) IsSellerOrder() bool {
	return o.ShopID != 0
}
