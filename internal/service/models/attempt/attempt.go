package attempt

import "time"

const (
	// MaxAttempts is the number of failed coupon validations permitted
	// within one window before the shopper is locked out.
	MaxAttempts = 10
	// Window is the rolling period during which failures accumulate.
	Window = 7 * 24 * time.Hour
)

// CouponAttempt tracks failed coupon-code validations for one shopper.
// Count resets lazily: the first read after Expiry treats it as zero.
type CouponAttempt struct {
	UserID int64     `json:"userId"`
	Count  int       `json:"count"`
	Expiry time.Time `json:"expiry"`
}

// Locked reports whether new validation attempts must be rejected.
func (a *CouponAttempt) Locked(now time.Time) bool {
	return a.Count >= MaxAttempts && !now.After(a.Expiry)
}

// Windowed returns the effective failure count, applying the lazy reset
// when the window has elapsed.
func (a *CouponAttempt) Windowed(now time.Time) int {
	if now.After(a.Expiry) {
		return 0
	}

	return a.Count
}
