// Package pricing computes line prices for weight-priced products.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MinorUnitPlaces is the number of decimal places prices are rounded to.
	MinorUnitPlaces int32 = 2
	// WeightPlaces is the number of decimal places weights are stored with.
	WeightPlaces int32 = 3
)

var (
	// MaxWeight is the largest weight a list row can hold (numeric(10,3)).
	MaxWeight = decimal.RequireFromString("9999999.999")
	// MaxLinePrice is the largest calculated price a list row can hold (numeric(12,2)).
	MaxLinePrice = decimal.RequireFromString("9999999999.99")
)

// ComputeWeightedPrice returns weight × pricePerUnit rounded half-up to the
// currency minor unit. ok is false when weight is missing or not positive.
func ComputeWeightedPrice(weight *decimal.Decimal, pricePerUnit decimal.Decimal) (decimal.Decimal, bool) {
	if weight == nil || !weight.IsPositive() {
		return decimal.Zero, false
	}
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative values we accept here.
	return weight.Mul(pricePerUnit).Round(MinorUnitPlaces), true
}

// NormalizeWeight rounds weight to WeightPlaces so the price is computed on
// the value that will be stored. ok is false when the rounded weight is
// missing, not positive or above MaxWeight.
func NormalizeWeight(weight *decimal.Decimal) (decimal.Decimal, bool) {
	if weight == nil {
		return decimal.Zero, false
	}
	rounded := weight.Round(WeightPlaces)
	if !rounded.IsPositive() || rounded.GreaterThan(MaxWeight) {
		return decimal.Zero, false
	}
	return rounded, true
}

// ParseWeight converts user input into a weight. Blank or non-numeric input
// yields ok=false; sign checks are left to ComputeWeightedPrice.
func ParseWeight(raw string) (*decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, false
	}
	return &value, true
}

// LineTotal returns the contribution of one list row to a cart total: the
// stored weighted price when present, otherwise unit price × quantity.
func LineTotal(calculated *decimal.Decimal, unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	if calculated != nil {
		return *calculated
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
