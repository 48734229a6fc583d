package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors surfaced by the wallet, escrow and coupon flows. All of
// these are recoverable at the caller and map to 4xx responses.
var (
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrInvalidStateTransition = errors.New("invalid state transition for requested action")
	ErrDuplicateUsage         = errors.New("operation already recorded for this order")
	ErrSignatureMismatch      = errors.New("payment signature verification failed")
	ErrConcurrencyConflict    = errors.New("wallet was modified concurrently, retry")
	ErrWalletInactive         = errors.New("wallet is not active")
)

// CouponError carries the human-readable reason a coupon was rejected.
type CouponError struct {
	Reason string
}

func (e *CouponError) Error() string {
	return "coupon invalid: " + e.Reason
}

// NewCouponError creates a CouponError with the given reason
func NewCouponError(reason string) *CouponError {
	return &CouponError{Reason: reason}
}

// IsCouponError reports whether err is a coupon rejection and returns it.
func IsCouponError(err error) (*CouponError, bool) {
	var ce *CouponError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AppError represents an application error with an HTTP status code
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// BadRequestError creates a 400 Bad Request error
func BadRequestError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}

// NotFoundError creates a 404 Not Found error
func NotFoundError(message string, err error) *AppError {
	return NewAppError(http.StatusNotFound, message, err)
}

// ConflictError creates a 409 Conflict error
func ConflictError(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, message, err)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
