package controllers

import (
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/pricing"
	"github.com/angelmondragon/retailpos-backend/internal/shoppinglist"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type listItemResponse struct {
	ID                uuid.UUID        `json:"id"`
	ProductID         *uuid.UUID       `json:"product_id,omitempty"`
	Text              string           `json:"text"`
	Quantity          int              `json:"quantity"`
	Weight            *decimal.Decimal `json:"weight,omitempty"`
	CalculatedPrice   *decimal.Decimal `json:"calculated_price,omitempty"`
	UnitPrice         *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal         *decimal.Decimal `json:"line_total,omitempty"`
	WeightUnit        *string          `json:"weight_unit,omitempty"`
	Completed         bool             `json:"completed"`
	IsClickAndCollect bool             `json:"is_click_and_collect"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type cartResponse struct {
	Items []listItemResponse `json:"items"`
	Count int                `json:"count"`
	Total decimal.Decimal    `json:"total"`
}

func newListItemResponse(item models.ShoppingListItem) listItemResponse {
	out := listItemResponse{
		ID:                item.ID,
		ProductID:         item.ProductID,
		Text:              item.Text,
		Quantity:          item.Quantity,
		Weight:            item.Weight,
		CalculatedPrice:   item.CalculatedPrice,
		Completed:         item.Completed,
		IsClickAndCollect: item.IsClickAndCollect,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
	if item.Product != nil {
		unit := item.Product.Price
		if item.Product.PricePerUnit != nil {
			unit = *item.Product.PricePerUnit
		}
		total := pricing.LineTotal(item.CalculatedPrice, item.Product.Price, item.Quantity)
		out.UnitPrice = &unit
		out.LineTotal = &total
		out.WeightUnit = item.Product.WeightUnit
	}
	return out
}

func newListItemsResponse(items []models.ShoppingListItem) []listItemResponse {
	out := make([]listItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newListItemResponse(item))
	}
	return out
}

func newCartResponse(view *shoppinglist.CartView) cartResponse {
	if view == nil {
		return cartResponse{Items: []listItemResponse{}, Total: decimal.Zero}
	}
	return cartResponse{
		Items: newListItemsResponse(view.Items),
		Count: view.Count,
		Total: view.Total,
	}
}
