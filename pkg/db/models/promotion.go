package models

import (
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Promotion is a time-boxed discount on all or selected products.
type Promotion struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID        uuid.UUID            `gorm:"column:business_id;type:uuid;not null"`
	BranchID          *uuid.UUID           `gorm:"column:branch_id;type:uuid"`
	Name              string               `gorm:"column:name;not null"`
	Description       *string              `gorm:"column:description"`
	DiscountType      enums.DiscountType   `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue     decimal.Decimal      `gorm:"column:discount_value;type:numeric(12,2);not null"`
	StartDate         time.Time            `gorm:"column:start_date;not null"`
	EndDate           time.Time            `gorm:"column:end_date;not null"`
	Active            bool                 `gorm:"column:active;not null"`
	AppliesTo         enums.PromotionScope `gorm:"column:applies_to;type:promotion_scope;not null;default:'all'"`
	MaxDiscountAmount *decimal.Decimal     `gorm:"column:max_discount_amount;type:numeric(12,2)"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Products []PromotionProduct `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE"`
}

// PromotionProduct links a promotion to one of the products it discounts.
type PromotionProduct struct {
	PromotionID uuid.UUID `gorm:"column:promotion_id;type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID"`
}
