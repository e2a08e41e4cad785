package models

import (
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
)

// Notification stores an in-app message. Rows with a CustomerID belong to that
// customer; rows without one are for staff, scoped to BranchID when set.
type Notification struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID              `gorm:"type:uuid;not null" json:"business_id"`
	CustomerID *uuid.UUID             `gorm:"type:uuid" json:"customer_id,omitempty"`
	BranchID   *uuid.UUID             `gorm:"type:uuid" json:"branch_id,omitempty"`
	Type       enums.NotificationType `gorm:"type:notification_type;not null" json:"type"`
	Title      string                 `gorm:"type:text;not null" json:"title"`
	Message    string                 `gorm:"type:text;not null" json:"message"`
	Link       *string                `gorm:"type:text" json:"link,omitempty"`
	ReadAt     *time.Time             `gorm:"type:timestamptz" json:"read_at,omitempty"`
	CreatedAt  time.Time              `gorm:"type:timestamptz;default:now()" json:"created_at"`
}
