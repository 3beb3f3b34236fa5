package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoPasswordSet      = errors.New("no password set, use OTP login")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrNotVerified        = errors.New("email not verified")
)

// ProductsNotFoundError reports every cart reference that matched no
// candle, not just the first one.
type ProductsNotFoundError struct {
	IDs []int64
}

func (e *ProductsNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("some products were not found: %s", strings.Join(ids, ", "))
}

type ProductUnavailableError struct {
	Title string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("%q is no longer available", e.Title)
}

type InsufficientStockError struct {
	Title     string
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q, only %d left", e.Title, e.Available)
}
