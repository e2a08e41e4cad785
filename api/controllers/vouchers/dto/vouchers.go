package voucherdto

import (
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherRequest is the admin create/update body.
type VoucherRequest struct {
	Name          string             `json:"name" validate:"required,max=120"`
	Description   *string            `json:"description" validate:"omitempty,max=500"`
	BranchID      *uuid.UUID         `json:"branch_id"`
	PointsCost    int                `json:"points_cost" validate:"required,gt=0"`
	DiscountType  enums.DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	IsActive      *bool              `json:"is_active"`
}

// SetActiveRequest toggles a voucher on or off.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Voucher is the API shape of a voucher.
type Voucher struct {
	ID            uuid.UUID          `json:"id"`
	BranchID      *uuid.UUID         `json:"branch_id,omitempty"`
	Name          string             `json:"name"`
	Description   *string            `json:"description,omitempty"`
	PointsCost    int                `json:"points_cost"`
	DiscountType  enums.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
	Label         string             `json:"label,omitempty"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// AvailableVoucher is a voucher the customer may redeem.
type AvailableVoucher struct {
	Voucher
	CanAfford bool `json:"can_afford"`
}

// CustomerVoucher is a redeemed voucher held by the customer.
type CustomerVoucher struct {
	ID          uuid.UUID  `json:"id"`
	VoucherID   uuid.UUID  `json:"voucher_id"`
	VoucherName string     `json:"voucher_name,omitempty"`
	Code        string     `json:"voucher_code"`
	PointsSpent int        `json:"points_spent"`
	RedeemedAt  time.Time  `json:"redeemed_at"`
	IsUsed      bool       `json:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

// Wallet is the customer's loyalty overview.
type Wallet struct {
	Balance   int                `json:"loyalty_points"`
	Available []AvailableVoucher `json:"available"`
	Redeemed  []CustomerVoucher  `json:"redeemed"`
}

// Redemption is returned by a successful redeem.
type Redemption struct {
	Code            string          `json:"voucher_code"`
	RemainingPoints int             `json:"remaining_points"`
	Voucher         Voucher         `json:"voucher"`
	CustomerVoucher CustomerVoucher `json:"customer_voucher"`
}

// DiscountPreview is what a voucher would take off a subtotal.
type DiscountPreview struct {
	VoucherID uuid.UUID       `json:"voucher_id"`
	Label     string          `json:"label"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}
