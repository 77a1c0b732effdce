package orderitem

import (
	"time"
)

// OrderItem is a line within an order. Price is a snapshot taken at
// checkout, not the live product price. CouponsUsed counts the redemptions
// actually granted against the line and never exceeds Quantity.
type OrderItem struct {
	ID             int64     `json:"id"`
	OrderID        int64     `json:"orderId"`
	ProductID      int64     `json:"product"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	Quantity       int       `json:"quantity"`
	Image          string    `json:"image"`
	CouponCode     string    `json:"couponCode,omitempty"`
	CouponsUsed    int       `json:"couponsUsed"`
	DiscountAmount float64   `json:"discountAmount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
