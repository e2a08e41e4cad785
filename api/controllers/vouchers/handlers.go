package vouchers

import (
	"context"
	"net/http"

	voucherdto "github.com/angelmondragon/retailpos-backend/api/controllers/vouchers/dto"
	"github.com/angelmondragon/retailpos-backend/api/middleware"
	"github.com/angelmondragon/retailpos-backend/api/responses"
	"github.com/angelmondragon/retailpos-backend/api/validators"
	vouchersvc "github.com/angelmondragon/retailpos-backend/internal/vouchers"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Redeemer is the ledger operation behind POST /vouchers/{voucherId}/redeem.
type Redeemer interface {
	Redeem(ctx context.Context, customerID, voucherID uuid.UUID) (*vouchersvc.Redemption, error)
}

// Wallet returns the loyalty balance, redeemable vouchers and held codes.
func Wallet(svc vouchersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "voucher service unavailable"))
			return
		}
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := branchFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallet, err := svc.Wallet(r.Context(), customerID, branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newWallet(wallet))
	}
}

func Redeemed(svc vouchersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "voucher service unavailable"))
			return
		}
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListRedeemed(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCustomerVouchers(rows))
	}
}

// Redeem spends the customer's points on a voucher and returns the new code.
func Redeem(ledger Redeemer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ledger == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "voucher ledger unavailable"))
			return
		}
		customerID, err := middleware.CustomerUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		voucherID, err := validators.URLParamUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redemption, err := ledger.Redeem(r.Context(), customerID, voucherID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newRedemption(redemption))
	}
}

// PreviewDiscount reports what a voucher takes off ?subtotal=.
func PreviewDiscount(svc vouchersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "voucher service unavailable"))
			return
		}
		businessID, err := middleware.BusinessUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		voucherID, err := validators.URLParamUUID(r, "voucherId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subtotal, err := validators.ParseQueryDecimal(r, "subtotal")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if subtotal == nil {
			zero := decimal.Zero
			subtotal = &zero
		}

		preview, err := svc.PreviewDiscount(r.Context(), businessID, voucherID, *subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, voucherdto.DiscountPreview{
			VoucherID: preview.Voucher.ID,
			Label:     preview.Label,
			Subtotal:  preview.Subtotal,
			Discount:  preview.Discount,
			Total:     preview.Total,
		})
	}
}

func branchFromRequest(r *http.Request) (*uuid.UUID, error) {
	branchID, err := validators.ParseQueryUUID(r, "branch")
	if err != nil || branchID != nil {
		return branchID, err
	}
	return middleware.BranchUUID(r.Context())
}
