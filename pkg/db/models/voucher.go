package models

import (
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Voucher is a catalog entry customers can buy with loyalty points.
type Voucher struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID    uuid.UUID          `gorm:"column:business_id;type:uuid;not null"`
	BranchID      *uuid.UUID         `gorm:"column:branch_id;type:uuid"`
	Name          string             `gorm:"column:name;not null"`
	Description   *string            `gorm:"column:description"`
	PointsCost    int                `gorm:"column:points_cost;not null"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	IsActive      bool               `gorm:"column:is_active;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerVoucher is an immutable proof of redemption. VoucherCode is unique
// across all rows.
type CustomerVoucher struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	VoucherID   uuid.UUID  `gorm:"column:voucher_id;type:uuid;not null"`
	VoucherCode string     `gorm:"column:voucher_code;not null;uniqueIndex:customer_vouchers_voucher_code_key"`
	PointsSpent int        `gorm:"column:points_spent;not null"`
	RedeemedAt  time.Time  `gorm:"column:redeemed_at;not null"`
	IsUsed      bool       `gorm:"column:is_used;not null;default:false"`
	UsedAt      *time.Time `gorm:"column:used_at"`

	Voucher *Voucher `gorm:"foreignKey:VoucherID;references:ID"`
}
