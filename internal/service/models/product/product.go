package product

import "time"

// Product is the slice of the catalog the checkout core depends on.
// Stock is decremented and Sold incremented once per consolidated order.
type Product struct {
	ID        int64     `json:"id"`
	ShopID    int64     `json:"shop"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Sold      int64     `json:"sold"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
