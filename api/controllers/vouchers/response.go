package vouchers

import (
	voucherdto "github.com/angelmondragon/retailpos-backend/api/controllers/vouchers/dto"
	vouchersvc "github.com/angelmondragon/retailpos-backend/internal/vouchers"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
)

func newVoucher(v models.Voucher, label string) voucherdto.Voucher {
	return voucherdto.Voucher{
		ID:            v.ID,
		BranchID:      v.BranchID,
		Name:          v.Name,
		Description:   v.Description,
		PointsCost:    v.PointsCost,
		DiscountType:  v.DiscountType,
		DiscountValue: v.DiscountValue,
		Label:         label,
		IsActive:      v.IsActive,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func newCustomerVoucher(cv models.CustomerVoucher) voucherdto.CustomerVoucher {
	out := voucherdto.CustomerVoucher{
		ID:          cv.ID,
		VoucherID:   cv.VoucherID,
		Code:        cv.VoucherCode,
		PointsSpent: cv.PointsSpent,
		RedeemedAt:  cv.RedeemedAt,
		IsUsed:      cv.IsUsed,
		UsedAt:      cv.UsedAt,
	}
	if cv.Voucher != nil {
		out.VoucherName = cv.Voucher.Name
	}
	return out
}

func newCustomerVouchers(rows []models.CustomerVoucher) []voucherdto.CustomerVoucher {
	out := make([]voucherdto.CustomerVoucher, 0, len(rows))
	for _, row := range rows {
		out = append(out, newCustomerVoucher(row))
	}
	return out
}

func newWallet(w *vouchersvc.Wallet) voucherdto.Wallet {
	available := make([]voucherdto.AvailableVoucher, 0, len(w.Available))
	for _, a := range w.Available {
		available = append(available, voucherdto.AvailableVoucher{
			Voucher:   newVoucher(a.Voucher, a.Label),
			CanAfford: a.CanAfford,
		})
	}
	return voucherdto.Wallet{
		Balance:   w.Balance,
		Available: available,
		Redeemed:  newCustomerVouchers(w.Redeemed),
	}
}

func newRedemption(r *vouchersvc.Redemption) voucherdto.Redemption {
	cv := r.CustomerVoucher
	if cv.Voucher == nil {
		v := r.Voucher
		cv.Voucher = &v
	}
	return voucherdto.Redemption{
		Code:            r.Code,
		RemainingPoints: r.RemainingPoints,
		Voucher:         newVoucher(r.Voucher, ""),
		CustomerVoucher: newCustomerVoucher(cv),
	}
}

func toVoucherInput(req voucherdto.VoucherRequest) vouchersvc.VoucherInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return vouchersvc.VoucherInput{
		Name:          req.Name,
		Description:   req.Description,
		BranchID:      req.BranchID,
		PointsCost:    req.PointsCost,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		IsActive:      active,
	}
}
