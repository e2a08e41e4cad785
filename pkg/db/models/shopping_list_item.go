package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingListItem is one row of a customer's list. Rows flagged
// IsClickAndCollect and not Completed form the customer's cart.
type ShoppingListItem struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID        uuid.UUID        `gorm:"column:customer_id;type:uuid;not null"`
	ProductID         *uuid.UUID       `gorm:"column:product_id;type:uuid"`
	Text              string           `gorm:"column:text;not null"`
	Quantity          int              `gorm:"column:quantity;not null;default:1"`
	Weight            *decimal.Decimal `gorm:"column:weight;type:numeric(10,3)"`
	CalculatedPrice   *decimal.Decimal `gorm:"column:calculated_price;type:numeric(12,2)"`
	Completed         bool             `gorm:"column:completed;not null;default:false"`
	IsClickAndCollect bool             `gorm:"column:is_click_and_collect;not null;default:false"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID"`
}

// InCart reports whether the row currently belongs to the click-and-collect cart.
func (i ShoppingListItem) InCart() bool {
	return i.IsClickAndCollect && !i.Completed
}
