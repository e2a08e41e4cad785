// Package stock validates requested quantities against a product's stock level.
package stock

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
)

// Shortfall describes a rejected request. Available is the most the customer
// could still add given what they already hold.
type Shortfall struct {
	Available int `json:"available_quantity"`
	Held      int `json:"held_quantity"`
	Requested int `json:"requested_quantity"`
	Stock     int `json:"stock_quantity"`
}

// CheckAvailability fails with CodeInsufficientStock when reserved+requested
// exceeds stock. The comparison is done against the remaining headroom so
// very large requests cannot wrap around. The error details carry a Shortfall.
func CheckAvailability(requested, reserved, stock int) error {
	available := Remaining(reserved, stock)
	if requested <= available {
		return nil
	}
	shortfall := Shortfall{
		Available: available,
		Held:      reserved,
		Requested: requested,
		Stock:     stock,
	}
	msg := fmt.Sprintf("only %d more available", available)
	if reserved > 0 {
		msg = fmt.Sprintf("only %d more available, %d already in your list", available, reserved)
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).WithDetails(shortfall)
}

// Remaining is how many more units fit under stock given reserved, never
// negative.
func Remaining(reserved, stock int) int {
	if stock <= 0 {
		return 0
	}
	reserved = max(reserved, 0)
	if reserved >= stock {
		return 0
	}
	return stock - reserved
}

// ShortfallOf extracts the Shortfall carried by an insufficient stock error.
func ShortfallOf(err error) (Shortfall, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		return Shortfall{}, false
	}
	shortfall, ok := typed.Details().(Shortfall)
	return shortfall, ok
}
