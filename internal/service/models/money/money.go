package money

import "math"

// Round2 rounds a currency amount to 2 decimal places, half away from zero.
// All price arithmetic in the checkout rounds at every accumulation step,
// so intermediate figures are already representable as cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
