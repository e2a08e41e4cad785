package vouchers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/db"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errBalanceTooLow is returned by RedeemTx when the conditional decrement
// matched no row.
var errBalanceTooLow = errors.New("loyalty balance below points cost")

// codeConstraints are the names the voucher_code unique constraint reports
// under Postgres and SQLite.
var codeConstraints = []string{"customer_vouchers_voucher_code_key", "customer_vouchers.voucher_code"}

func isCodeCollision(err error) bool {
	for _, name := range codeConstraints {
		if db.IsUniqueViolation(err, name) {
			return true
		}
	}
	return false
}

// ListParams narrows the admin voucher listing.
type ListParams struct {
	BusinessID uuid.UUID
	Status     enums.VoucherStatusFilter
	Search     string
}

// Repository persists vouchers, balances and redemptions.
type Repository interface {
	GetVoucher(ctx context.Context, id uuid.UUID) (*models.Voucher, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, customerID, voucherID uuid.UUID, code string, pointsCost int, redeemedAt time.Time) (*models.CustomerVoucher, int, error)
	ListActive(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID) ([]models.Voucher, error)
	ListRedeemed(ctx context.Context, customerID uuid.UUID) ([]models.CustomerVoucher, error)
	List(ctx context.Context, params ListParams) ([]models.Voucher, error)
	Create(ctx context.Context, voucher *models.Voucher) error
	Update(ctx context.Context, voucher *models.Voucher) error
	SetActive(ctx context.Context, businessID, id uuid.UUID, active bool) (bool, error)
	Delete(ctx context.Context, businessID, id uuid.UUID) (bool, error)
	CountRedemptions(ctx context.Context, voucherID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetVoucher(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&voucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &voucher, nil
}

func (r *repositoryImpl) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// RedeemTx debits the balance only if it still covers pointsCost, then records
// the redemption. It returns the remaining balance. Callers own tx so a
// failed insert rolls the debit back.
func (r *repositoryImpl) RedeemTx(ctx context.Context, tx *gorm.DB, customerID, voucherID uuid.UUID, code string, pointsCost int, redeemedAt time.Time) (*models.CustomerVoucher, int, error) {
	if tx == nil {
		return nil, 0, errors.New("transaction required")
	}
	res := tx.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND loyalty_points >= ?", customerID, pointsCost).
		Update("loyalty_points", gorm.Expr("loyalty_points - ?", pointsCost))
	if res.Error != nil {
		return nil, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, 0, errBalanceTooLow
	}

	record := &models.CustomerVoucher{
		ID:          uuid.New(),
		CustomerID:  customerID,
		VoucherID:   voucherID,
		VoucherCode: code,
		PointsSpent: pointsCost,
		RedeemedAt:  redeemedAt,
	}
	if err := tx.WithContext(ctx).Omit("Voucher").Create(record).Error; err != nil {
		return nil, 0, err
	}

	var remaining int
	if err := tx.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Select("loyalty_points").
		Scan(&remaining).Error; err != nil {
		return nil, 0, err
	}
	return record, remaining, nil
}

// ListActive returns the vouchers a customer of the business can redeem.
func (r *repositoryImpl) ListActive(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID) ([]models.Voucher, error) {
	query := r.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ?", businessID, true)
	if branchID != nil {
		query = query.Where("(branch_id = ? OR branch_id IS NULL)", *branchID)
	}
	var vouchers []models.Voucher
	err := query.Order("points_cost ASC").Order("name ASC").Find(&vouchers).Error
	return vouchers, err
}

// ListRedeemed returns the customer's redemptions, newest first.
func (r *repositoryImpl) ListRedeemed(ctx context.Context, customerID uuid.UUID) ([]models.CustomerVoucher, error) {
	var rows []models.CustomerVoucher
	err := r.db.WithContext(ctx).
		Preload("Voucher").
		Where("customer_id = ?", customerID).
		Order("redeemed_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// List returns the business's vouchers, newest first.
func (r *repositoryImpl) List(ctx context.Context, params ListParams) ([]models.Voucher, error) {
	query := r.db.WithContext(ctx).Where("business_id = ?", params.BusinessID)
	switch params.Status {
	case enums.VoucherFilterActive:
		query = query.Where("is_active = ?", true)
	case enums.VoucherFilterInactive:
		query = query.Where("is_active = ?", false)
	}
	if search := strings.ToLower(strings.TrimSpace(params.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", like, like)
	}
	var vouchers []models.Voucher
	err := query.Order("created_at DESC").Order("id DESC").Find(&vouchers).Error
	return vouchers, err
}

func (r *repositoryImpl) Create(ctx context.Context, voucher *models.Voucher) error {
	if voucher.ID == uuid.Nil {
		voucher.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *repositoryImpl) Update(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND business_id = ?", voucher.ID, voucher.BusinessID).
		Updates(map[string]any{
			"name":           voucher.Name,
			"description":    voucher.Description,
			"branch_id":      voucher.BranchID,
			"points_cost":    voucher.PointsCost,
			"discount_type":  voucher.DiscountType,
			"discount_value": voucher.DiscountValue,
			"is_active":      voucher.IsActive,
		}).Error
}

func (r *repositoryImpl) SetActive(ctx context.Context, businessID, id uuid.UUID, active bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Voucher{}).
		Where("id = ? AND business_id = ?", id, businessID).
		Update("is_active", active)
	return res.RowsAffected > 0, res.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, businessID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessID).
		Delete(&models.Voucher{})
	return res.RowsAffected > 0, res.Error
}

func (r *repositoryImpl) CountRedemptions(ctx context.Context, voucherID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CustomerVoucher{}).
		Where("voucher_id = ?", voucherID).
		Count(&count).Error
	return count, err
}
