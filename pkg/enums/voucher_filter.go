package enums

import (
	"fmt"
	"strings"
)

// VoucherStatusFilter narrows admin voucher listings.
type VoucherStatusFilter string

const (
	VoucherFilterAll      VoucherStatusFilter = "all"
	VoucherFilterActive   VoucherStatusFilter = "active"
	VoucherFilterInactive VoucherStatusFilter = "inactive"
)

var validVoucherFilters = []VoucherStatusFilter{
	VoucherFilterAll,
	VoucherFilterActive,
	VoucherFilterInactive,
}

// ParseVoucherStatusFilter treats an empty value as VoucherFilterAll.
func ParseVoucherStatusFilter(value string) (VoucherStatusFilter, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return VoucherFilterAll, nil
	}
	for _, candidate := range validVoucherFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher filter %q", value)
}
