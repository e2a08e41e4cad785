package promotions

import (
	"testing"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPrice(t *testing.T) {
	capAt := d("1.00")
	cases := []struct {
		name  string
		promo models.Promotion
		price string
		want  string
	}{
		{"percentage", models.Promotion{DiscountType: enums.DiscountTypePercentage, DiscountValue: d("20")}, "10.00", "8.00"},
		{"percentage rounds", models.Promotion{DiscountType: enums.DiscountTypePercentage, DiscountValue: d("15")}, "0.99", "0.84"},
		{"percentage over 100 floors", models.Promotion{DiscountType: enums.DiscountTypePercentage, DiscountValue: d("150")}, "4.00", "0.00"},
		{"fixed", models.Promotion{DiscountType: enums.DiscountTypeFixedAmount, DiscountValue: d("1.50")}, "4.00", "2.50"},
		{"fixed floors at zero", models.Promotion{DiscountType: enums.DiscountTypeFixedAmount, DiscountValue: d("9")}, "4.00", "0.00"},
		{"percentage capped", models.Promotion{DiscountType: enums.DiscountTypePercentage, DiscountValue: d("50"), MaxDiscountAmount: &capAt}, "10.00", "9.00"},
		{"fixed capped", models.Promotion{DiscountType: enums.DiscountTypeFixedAmount, DiscountValue: d("3"), MaxDiscountAmount: &capAt}, "10.00", "9.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Price(tc.promo, models.Product{Name: "p", Price: d(tc.price)})
			if !got.Original.Equal(d(tc.price)) {
				t.Fatalf("original changed: %s", got.Original)
			}
			if got.Discounted == nil {
				t.Fatalf("expected discounted price")
			}
			if got.Discounted.StringFixed(2) != tc.want {
				t.Fatalf("expected %s got %s", tc.want, got.Discounted.StringFixed(2))
			}
		})
	}
}

func TestPriceWithoutDiscount(t *testing.T) {
	for _, dt := range []enums.DiscountType{enums.DiscountTypePercentage, enums.DiscountTypeFixedAmount} {
		zero := models.Promotion{DiscountType: dt, DiscountValue: d("0")}
		got := Price(zero, models.Product{Price: d("3")})
		if got.Discounted == nil || !got.Discounted.Equal(got.Original) {
			t.Fatalf("%s: zero discount must price at the original, got %v", dt, got.Discounted)
		}
	}
	unknown := models.Promotion{DiscountType: "bogus", DiscountValue: d("10")}
	if got := Price(unknown, models.Product{Price: d("3")}); got.Discounted != nil {
		t.Fatalf("unknown discount type must leave price untouched")
	}
}

func TestFormatDiscount(t *testing.T) {
	if got := FormatDiscount(enums.DiscountTypePercentage, d("10.00"), "€"); got != "10% off" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := FormatDiscount(enums.DiscountTypePercentage, d("12.5"), "€"); got != "12.5% off" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := FormatDiscount(enums.DiscountTypeFixedAmount, d("5"), "€"); got != "€5.00 off" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := FormatDiscount(enums.DiscountTypeFixedAmount, d("2.5"), "$"); got != "$2.50 off" {
		t.Fatalf("unexpected label %q", got)
	}
}
