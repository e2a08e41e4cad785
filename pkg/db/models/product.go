package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry sold at a business, optionally pinned to one branch.
// PricePerUnit is only set for weight-priced products.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID    uuid.UUID        `gorm:"column:business_id;type:uuid;not null"`
	BranchID      *uuid.UUID       `gorm:"column:branch_id;type:uuid"`
	Name          string           `gorm:"column:name;not null"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0"`
	IsWeighted    bool             `gorm:"column:is_weighted;not null;default:false"`
	PricePerUnit  *decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,2)"`
	WeightUnit    *string          `gorm:"column:weight_unit"`
	Category      *string          `gorm:"column:category"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
