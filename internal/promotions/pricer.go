// Package promotions prices products under time-boxed promotions.
package promotions

import (
	"fmt"

	"github.com/angelmondragon/retailpos-backend/internal/pricing"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricedProduct is a product's display price under a promotion. Discounted is
// set for every percentage or fixed promotion, equal to Original when the
// discount is zero, and nil only for an unknown discount type.
type PricedProduct struct {
	ProductID  uuid.UUID
	Name       string
	Original   decimal.Decimal
	Discounted *decimal.Decimal
}

// Price applies promotion to product. The discount is capped by
// MaxDiscountAmount when set and the result never drops below zero.
func Price(promotion models.Promotion, product models.Product) PricedProduct {
	out := PricedProduct{ProductID: product.ID, Name: product.Name, Original: product.Price}

	var discount decimal.Decimal
	switch promotion.DiscountType {
	case enums.DiscountTypePercentage:
		discount = product.Price.Mul(promotion.DiscountValue).Div(hundred)
	case enums.DiscountTypeFixedAmount:
		discount = promotion.DiscountValue
	default:
		return out
	}
	if promotion.MaxDiscountAmount != nil && discount.GreaterThan(*promotion.MaxDiscountAmount) {
		discount = *promotion.MaxDiscountAmount
	}
	discount = decimal.Max(discount, decimal.Zero)

	discounted := decimal.Max(product.Price.Sub(discount), decimal.Zero).Round(pricing.MinorUnitPlaces)
	out.Discounted = &discounted
	return out
}

// FormatDiscount renders "{v}% off" or "{currency}{v:.2f} off".
func FormatDiscount(discountType enums.DiscountType, value decimal.Decimal, currency string) string {
	if discountType == enums.DiscountTypePercentage {
		return fmt.Sprintf("%s%% off", value.String())
	}
	return fmt.Sprintf("%s%s off", currency, value.StringFixed(2))
}
