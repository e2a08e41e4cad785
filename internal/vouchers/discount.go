package vouchers

import (
	"github.com/angelmondragon/retailpos-backend/internal/pricing"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns the amount voucher takes off subtotal. Fixed
// amounts never exceed the subtotal.
func CalculateDiscount(voucher models.Voucher, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	switch voucher.DiscountType {
	case enums.DiscountTypePercentage:
		return subtotal.Mul(voucher.DiscountValue).Div(hundred).Round(pricing.MinorUnitPlaces)
	case enums.DiscountTypeFixedAmount:
		return decimal.Min(voucher.DiscountValue, subtotal)
	default:
		return decimal.Zero
	}
}
