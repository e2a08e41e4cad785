// Package catalog is the read-only view of products the engine prices and
// stock-checks against.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reader is the narrow catalog contract the engine depends on.
type Reader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, filter Filter) ([]models.Product, error)
}

// Filter narrows ListProducts. Zero values match everything.
type Filter struct {
	Category string
	Query    string
}

// Repository reads products through gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetProduct returns CodeNotFound when the product does not exist.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

// ListProducts returns a business's products ordered by name. When branchID is
// set, only products pinned to that branch or available business-wide match.
func (r *Repository) ListProducts(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, filter Filter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if branchID != nil {
		query = query.Where("(branch_id = ? OR branch_id IS NULL)", *branchID)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+q+"%")
	}
	var products []models.Product
	if err := query.Order("name ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

// GetProducts loads products by id, keyed by id. Missing ids are absent from the map.
func (r *Repository) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
