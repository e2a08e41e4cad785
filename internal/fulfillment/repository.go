package fulfillment

import (
	"context"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads and closes open click-and-collect rows across customers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListOpenCartItems(ctx context.Context, businessID uuid.UUID, customerID *uuid.UUID) ([]models.ShoppingListItem, error)
	ListCustomers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error)
	CloseItems(ctx context.Context, customerID uuid.UUID, itemIDs []uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// ListOpenCartItems returns cart rows of the business's customers, oldest first.
func (r *repositoryImpl) ListOpenCartItems(ctx context.Context, businessID uuid.UUID, customerID *uuid.UUID) ([]models.ShoppingListItem, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN customers ON customers.id = shopping_list_items.customer_id").
		Where("customers.business_id = ?", businessID).
		Where("shopping_list_items.is_click_and_collect = ?", true).
		Where("shopping_list_items.completed = ?", false)
	if customerID != nil {
		query = query.Where("shopping_list_items.customer_id = ?", *customerID)
	}
	var items []models.ShoppingListItem
	err := query.
		Order("shopping_list_items.created_at ASC").
		Order("shopping_list_items.id ASC").
		Find(&items).Error
	return items, err
}

func (r *repositoryImpl) ListCustomers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error) {
	out := make(map[uuid.UUID]models.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, err
	}
	for _, c := range customers {
		out[c.ID] = c
	}
	return out, nil
}

// CloseItems completes the rows and takes them out of the cart. Rows that
// left the cart in the meantime are not touched.
func (r *repositoryImpl) CloseItems(ctx context.Context, customerID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Where("customer_id = ? AND id IN ?", customerID, itemIDs).
		Where("is_click_and_collect = ? AND completed = ?", true, false).
		Updates(map[string]any{
			"completed":            true,
			"is_click_and_collect": false,
		})
	return res.RowsAffected, res.Error
}
