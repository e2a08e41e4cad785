package promotions

import (
	"context"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads promotions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns promotions running at now for the business. A nil
// branchID matches every promotion; otherwise business-wide promotions and
// those pinned to the branch match.
func (r *Repository) ListActive(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, now time.Time) ([]models.Promotion, error) {
	now = now.UTC()
	query := r.db.WithContext(ctx).
		Preload("Products.Product").
		Where("business_id = ?", businessID).
		Where("active = ?", true).
		Where("start_date <= ? AND end_date >= ?", now, now)
	if branchID != nil {
		query = query.Where("(branch_id = ? OR branch_id IS NULL)", *branchID)
	}
	var promos []models.Promotion
	err := query.Order("end_date ASC").Order("id ASC").Find(&promos).Error
	return promos, err
}
