package enums

import "fmt"

// PromotionScope controls which products a promotion applies to.
type PromotionScope string

const (
	PromotionScopeAll      PromotionScope = "all"
	PromotionScopeSpecific PromotionScope = "specific"
)

var validPromotionScopes = []PromotionScope{
	PromotionScopeAll,
	PromotionScopeSpecific,
}

func (p PromotionScope) IsValid() bool {
	for _, candidate := range validPromotionScopes {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParsePromotionScope(value string) (PromotionScope, error) {
	for _, candidate := range validPromotionScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion scope %q", value)
}
