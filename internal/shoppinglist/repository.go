package shoppinglist

import (
	"context"
	"errors"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists shopping list rows. Every read and write is scoped by
// customer.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, item *models.ShoppingListItem) error
	Get(ctx context.Context, customerID, itemID uuid.UUID) (*models.ShoppingListItem, error)
	FindMergeTarget(ctx context.Context, customerID, productID uuid.UUID, clickAndCollect bool) (*models.ShoppingListItem, error)
	IncrementQuantity(ctx context.Context, itemID uuid.UUID, delta, max int) (bool, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.ShoppingListItem, error)
	ListCart(ctx context.Context, customerID uuid.UUID) ([]models.ShoppingListItem, error)
	UpdateFlags(ctx context.Context, customerID, itemID uuid.UUID, fields map[string]any) (bool, error)
	Delete(ctx context.Context, customerID, itemID uuid.UUID) (bool, error)
	DeleteByCustomer(ctx context.Context, customerID uuid.UUID, completedOnly bool) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a shopping list repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Insert(ctx context.Context, item *models.ShoppingListItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Product").Create(item).Error
}

// Get returns nil, nil when the row does not exist or belongs to another customer.
func (r *repositoryImpl) Get(ctx context.Context, customerID, itemID uuid.UUID) (*models.ShoppingListItem, error) {
	var item models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND customer_id = ?", itemID, customerID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindMergeTarget returns the open, non-weighted row for productID on the
// given side of the list (cart or plain), or nil when there is none.
func (r *repositoryImpl) FindMergeTarget(ctx context.Context, customerID, productID uuid.UUID, clickAndCollect bool) (*models.ShoppingListItem, error) {
	var item models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Where("is_click_and_collect = ? AND completed = ?", clickAndCollect, false).
		Where("weight IS NULL").
		Order("created_at ASC").
		Order("id ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// IncrementQuantity adds delta to the row only while the result stays within
// max. It reports false when the guard rejected the update.
func (r *repositoryImpl) IncrementQuantity(ctx context.Context, itemID uuid.UUID, delta, max int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Where("id = ? AND quantity <= ?", itemID, max-delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByCustomer returns the whole list, newest first.
func (r *repositoryImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.ShoppingListItem, error) {
	var items []models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// ListCart returns the rows flagged for click-and-collect and not completed.
func (r *repositoryImpl) ListCart(ctx context.Context, customerID uuid.UUID) ([]models.ShoppingListItem, error) {
	var items []models.ShoppingListItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID).
		Where("is_click_and_collect = ? AND completed = ?", true, false).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repositoryImpl) UpdateFlags(ctx context.Context, customerID, itemID uuid.UUID, fields map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Where("id = ? AND customer_id = ?", itemID, customerID).
		Updates(fields)
	return res.RowsAffected > 0, res.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, customerID, itemID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", itemID, customerID).
		Delete(&models.ShoppingListItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *repositoryImpl) DeleteByCustomer(ctx context.Context, customerID uuid.UUID, completedOnly bool) (int64, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if completedOnly {
		query = query.Where("completed = ?", true)
	}
	res := query.Delete(&models.ShoppingListItem{})
	return res.RowsAffected, res.Error
}
