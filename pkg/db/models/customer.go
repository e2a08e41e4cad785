package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds the loyalty balance the voucher ledger debits.
type Customer struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID    uuid.UUID `gorm:"column:business_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	Email         *string   `gorm:"column:email"`
	LoyaltyPoints int       `gorm:"column:loyalty_points;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
