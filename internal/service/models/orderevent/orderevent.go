package orderevent

import "time"

// OrderCreated is the event payload published after a checkout commits.
// One event is emitted for the consolidated order and one per seller
// sub-order.
type OrderCreated struct {
	EventID    string    `json:"eventId"`
	OrderID    int64     `json:"orderId"`
	UserID     int64     `json:"userId"`
	ShopID     int64     `json:"shopId,omitempty"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}
