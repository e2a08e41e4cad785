package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/retailpos-backend/api/responses"
	"github.com/angelmondragon/retailpos-backend/internal/promotions"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type pricedProductResponse struct {
	ProductID  uuid.UUID        `json:"product_id"`
	Name       string           `json:"name"`
	Original   decimal.Decimal  `json:"original_price"`
	Discounted *decimal.Decimal `json:"discounted_price,omitempty"`
}

type promotionResponse struct {
	ID                uuid.UUID               `json:"id"`
	Name              string                  `json:"name"`
	Description       *string                 `json:"description,omitempty"`
	DiscountType      enums.DiscountType      `json:"discount_type"`
	DiscountValue     decimal.Decimal         `json:"discount_value"`
	Label             string                  `json:"label"`
	StartDate         time.Time               `json:"start_date"`
	EndDate           time.Time               `json:"end_date"`
	AppliesTo         enums.PromotionScope    `json:"applies_to"`
	MaxDiscountAmount *decimal.Decimal        `json:"max_discount_amount,omitempty"`
	Products          []pricedProductResponse `json:"products"`
}

// ActivePromotions lists running promotions with their priced products.
func ActivePromotions(svc promotions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "promotions service unavailable"))
			return
		}

		businessID, branchID, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active, err := svc.ActivePromotions(r.Context(), businessID, branchID, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]promotionResponse, 0, len(active))
		for _, a := range active {
			products := make([]pricedProductResponse, 0, len(a.Products))
			for _, p := range a.Products {
				products = append(products, pricedProductResponse{
					ProductID:  p.ProductID,
					Name:       p.Name,
					Original:   p.Original,
					Discounted: p.Discounted,
				})
			}
			out = append(out, promotionResponse{
				ID:                a.Promotion.ID,
				Name:              a.Promotion.Name,
				Description:       a.Promotion.Description,
				DiscountType:      a.Promotion.DiscountType,
				DiscountValue:     a.Promotion.DiscountValue,
				Label:             a.Label,
				StartDate:         a.Promotion.StartDate,
				EndDate:           a.Promotion.EndDate,
				AppliesTo:         a.Promotion.AppliesTo,
				MaxDiscountAmount: a.Promotion.MaxDiscountAmount,
				Products:          products,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
