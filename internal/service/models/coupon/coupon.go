package coupon

import (
	"regexp"
	"time"
)

// DiscountType selects how DiscountValue is interpreted.
type DiscountType string

const (
	// DiscountPercentage grants DiscountValue percent off the item price
	// per redemption. Value must be in (0, 100].
	DiscountPercentage DiscountType = "percentage"
	// DiscountAmount grants a flat DiscountValue off per redemption.
	DiscountAmount DiscountType = "amount"
)

func ParseDiscountType(s string) (DiscountType, bool) {
	switch DiscountType(s) {
	case DiscountPercentage, DiscountAmount:
		return DiscountType(s), true
	default:
		return "", false
	}
}

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// ValidCode reports whether code matches the XXXX-XXXX-XXXX format.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Coupon is a finite, shop-scoped discount instrument. NumOfCoupons is the
// remaining redemption pool: it only decreases and never goes negative.
type Coupon struct {
	ID             int64        `json:"id"`
	ShopID         int64        `json:"shop"`
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discountType"`
	DiscountValue  float64      `json:"discountValue"`
	NumOfCoupons   int          `json:"numOfCoupons"`
	ExpirationDate time.Time    `json:"expirationDate"`
	ProductIDs     []int64      `json:"products"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// QueryCouponsModel represents filter parameters for querying coupons.
type QueryCouponsModel struct {
	Ids     []int64 `json:"ids,omitempty"`
	ShopIds []int64 `json:"shopIds,omitempty"`
	Limit   int     `json:"limit,omitempty"`
	Offset  int     `json:"offset,omitempty"`
}
