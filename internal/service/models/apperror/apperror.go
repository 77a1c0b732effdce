package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error with a fixed HTTP status code and message.
// Handlers serialize it into the response envelope unchanged.
type Error struct {
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by code, so sentinel comparisons survive
// message customization (see InvalidCouponAttempt).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return e.Code == t.Code
}

var (
	ErrProductNotFound = &Error{
		Code:       "product_not_found",
		StatusCode: http.StatusNotFound,
		Message:    "Product not found",
	}
	ErrOrderNotFound = &Error{
		Code:       "order_not_found",
		StatusCode: http.StatusNotFound,
		Message:    "Order not found",
	}
	ErrCouponNotFound = &Error{
		Code:       "coupon_not_found",
		StatusCode: http.StatusNotFound,
		Message:    "Coupon not found",
	}
	ErrInvalidCoupon = &Error{
		Code:       "invalid_coupon",
		StatusCode: http.StatusBadRequest,
		Message:    "Coupon is invalid or has expired",
	}
	ErrAttemptLimitExceeded = &Error{
		Code:       "attempt_limit_exceeded",
		StatusCode: http.StatusBadRequest,
		Message:    "Exceeded maximum coupon attempts. Try again later.",
	}
	ErrInvalidStateTransition = &Error{
		Code:       "invalid_state_transition",
		StatusCode: http.StatusBadRequest,
		Message:    "Order has already been delivered",
	}
	ErrDuplicateCoupon = &Error{
		Code:       "duplicate",
		StatusCode: http.StatusBadRequest,
		Message:    "Coupon code already exists for this shop",
	}
	ErrResourceExhausted = &Error{
		Code:       "resource_exhausted",
		StatusCode: http.StatusConflict,
		Message:    "Requested resource has been exhausted",
	}
	ErrForbidden = &Error{
		Code:       "forbidden",
		StatusCode: http.StatusForbidden,
		Message:    "Access denied",
	}
	ErrValidation = &Error{
		Code:       "validation_error",
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed",
	}
)

// Validation builds a 400 validation error with the given message.
func Validation(msg string) *Error {
	return &Error{
		Code:       ErrValidation.Code,
		StatusCode: ErrValidation.StatusCode,
		Message:    msg,
	}
}

// InvalidCouponAttempt is the apply-coupon failure carrying the caller's
// position in the rate-limit window.
func InvalidCouponAttempt(count, max int) *Error {
	return &Error{
		Code:       ErrInvalidCoupon.Code,
		StatusCode: ErrInvalidCoupon.StatusCode,
		Message:    fmt.Sprintf("%s. Attempt %d/%d", ErrInvalidCoupon.Message, count, max),
	}
}
