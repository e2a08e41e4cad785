package vouchers

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/retailpos-backend/internal/promotions"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailableVoucher is an active voucher as shown in the customer portal.
type AvailableVoucher struct {
	Voucher   models.Voucher
	Label     string
	CanAfford bool
}

// Wallet is the customer's balance with what they can redeem and what they hold.
type Wallet struct {
	CustomerID uuid.UUID
	Balance    int
	Available  []AvailableVoucher
	Redeemed   []models.CustomerVoucher
}

// VoucherInput carries the editable fields of a voucher.
type VoucherInput struct {
	Name          string
	Description   *string
	BranchID      *uuid.UUID
	PointsCost    int
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	IsActive      bool
}

// Service serves the customer portal and voucher administration.
type Service interface {
	Wallet(ctx context.Context, customerID uuid.UUID, branchID *uuid.UUID) (*Wallet, error)
	ListRedeemed(ctx context.Context, customerID uuid.UUID) ([]models.CustomerVoucher, error)

	Create(ctx context.Context, businessID uuid.UUID, input VoucherInput) (*models.Voucher, error)
	Update(ctx context.Context, businessID, id uuid.UUID, input VoucherInput) (*models.Voucher, error)
	SetActive(ctx context.Context, businessID, id uuid.UUID, active bool) error
	Delete(ctx context.Context, businessID, id uuid.UUID) error
	List(ctx context.Context, params ListParams) ([]models.Voucher, error)

	PreviewDiscount(ctx context.Context, businessID, voucherID uuid.UUID, subtotal decimal.Decimal) (*DiscountPreview, error)
}

// DiscountPreview is what a voucher would take off a basket subtotal.
type DiscountPreview struct {
	Voucher  models.Voucher
	Label    string
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

type service struct {
	repo     Repository
	currency string
}

func NewService(repo Repository, currency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	return &service{repo: repo, currency: currency}, nil
}

func (s *service) Wallet(ctx context.Context, customerID uuid.UUID, branchID *uuid.UUID) (*Wallet, error) {
	customer, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	active, err := s.repo.ListActive(ctx, customer.BusinessID, branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	redeemed, err := s.ListRedeemed(ctx, customerID)
	if err != nil {
		return nil, err
	}

	wallet := &Wallet{
		CustomerID: customerID,
		Balance:    customer.LoyaltyPoints,
		Available:  make([]AvailableVoucher, 0, len(active)),
		Redeemed:   redeemed,
	}
	for _, v := range active {
		wallet.Available = append(wallet.Available, AvailableVoucher{
			Voucher:   v,
			Label:     promotions.FormatDiscount(v.DiscountType, v.DiscountValue, s.currency),
			CanAfford: customer.LoyaltyPoints >= v.PointsCost,
		})
	}
	return wallet, nil
}

func (s *service) ListRedeemed(ctx context.Context, customerID uuid.UUID) ([]models.CustomerVoucher, error) {
	rows, err := s.repo.ListRedeemed(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list redeemed vouchers")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, businessID uuid.UUID, input VoucherInput) (*models.Voucher, error) {
	if businessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id is required")
	}
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	voucher := &models.Voucher{
		ID:            uuid.New(),
		BusinessID:    businessID,
		BranchID:      input.BranchID,
		Name:          input.Name,
		Description:   input.Description,
		PointsCost:    input.PointsCost,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		IsActive:      input.IsActive,
	}
	if err := s.repo.Create(ctx, voucher); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create voucher")
	}
	return voucher, nil
}

func (s *service) Update(ctx context.Context, businessID, id uuid.UUID, input VoucherInput) (*models.Voucher, error) {
	existing, err := s.owned(ctx, businessID, id)
	if err != nil {
		return nil, err
	}
	input, err = normalizeInput(input)
	if err != nil {
		return nil, err
	}
	existing.Name = input.Name
	existing.Description = input.Description
	existing.BranchID = input.BranchID
	existing.PointsCost = input.PointsCost
	existing.DiscountType = input.DiscountType
	existing.DiscountValue = input.DiscountValue
	existing.IsActive = input.IsActive
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update voucher")
	}
	return existing, nil
}

func (s *service) SetActive(ctx context.Context, businessID, id uuid.UUID, active bool) error {
	found, err := s.repo.SetActive(ctx, businessID, id, active)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update voucher")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}
	return nil
}

// Delete refuses vouchers that were already redeemed; those are deactivated
// instead so issued codes keep their voucher.
func (s *service) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	if _, err := s.owned(ctx, businessID, id); err != nil {
		return err
	}
	count, err := s.repo.CountRedemptions(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count redemptions")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "voucher has been redeemed; deactivate it instead").
			WithDetails(map[string]any{"redemptions": count})
	}
	if _, err := s.repo.Delete(ctx, businessID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete voucher")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Voucher, error) {
	if params.BusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id is required")
	}
	if params.Status == "" {
		params.Status = enums.VoucherFilterAll
	}
	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vouchers")
	}
	return rows, nil
}

func (s *service) PreviewDiscount(ctx context.Context, businessID, voucherID uuid.UUID, subtotal decimal.Decimal) (*DiscountPreview, error) {
	if subtotal.IsNegative() {
		return nil, validation("subtotal", "subtotal cannot be negative")
	}
	voucher, err := s.owned(ctx, businessID, voucherID)
	if err != nil {
		return nil, err
	}
	discount := CalculateDiscount(*voucher, subtotal)
	return &DiscountPreview{
		Voucher:  *voucher,
		Label:    promotions.FormatDiscount(voucher.DiscountType, voucher.DiscountValue, s.currency),
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}, nil
}

func (s *service) owned(ctx context.Context, businessID, id uuid.UUID) (*models.Voucher, error) {
	voucher, err := s.repo.GetVoucher(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if voucher == nil || voucher.BusinessID != businessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}
	return voucher, nil
}

func normalizeInput(input VoucherInput) (VoucherInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return input, validation("name", "name is required")
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if desc == "" {
			input.Description = nil
		} else {
			input.Description = &desc
		}
	}
	if input.PointsCost <= 0 {
		return input, validation("points_cost", "points cost must be greater than zero")
	}
	if !input.DiscountType.IsValid() {
		return input, validation("discount_type", "discount type must be percentage or fixed_amount")
	}
	if !input.DiscountValue.IsPositive() {
		return input, validation("discount_value", "discount value must be greater than zero")
	}
	if input.DiscountType == enums.DiscountTypePercentage && input.DiscountValue.GreaterThan(hundred) {
		return input, validation("discount_value", "percentage discount cannot exceed 100")
	}
	return input, nil
}

func validation(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}
