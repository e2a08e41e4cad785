package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/retailpos-backend/api/middleware"
	"github.com/angelmondragon/retailpos-backend/api/responses"
	"github.com/angelmondragon/retailpos-backend/api/validators"
	"github.com/angelmondragon/retailpos-backend/internal/catalog"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type productResponse struct {
	ID            uuid.UUID        `json:"id"`
	BranchID      *uuid.UUID       `json:"branch_id,omitempty"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	StockQuantity int              `json:"stock_quantity"`
	IsWeighted    bool             `json:"is_weighted"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	WeightUnit    *string          `json:"weight_unit,omitempty"`
	Category      *string          `json:"category,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func newProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		BranchID:      p.BranchID,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		IsWeighted:    p.IsWeighted,
		PricePerUnit:  p.PricePerUnit,
		WeightUnit:    p.WeightUnit,
		Category:      p.Category,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ListProducts lists the caller's business catalog. A branch query parameter
// overrides the token's branch.
func ListProducts(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		businessID, branchID, err := scopeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := catalog.Filter{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 64),
			Query:    validators.SanitizeString(r.URL.Query().Get("q"), 64),
		}
		products, err := reader.ListProducts(r.Context(), businessID, branchID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, newProductResponse(p))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetProduct returns one product of the caller's business.
func GetProduct(reader catalog.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		businessID, err := middleware.BusinessUUID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := reader.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if product.BusinessID != businessID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}
		responses.WriteSuccess(w, newProductResponse(*product))
	}
}

// scopeFromRequest resolves the business from the token and the branch from
// the branch query parameter, falling back to the token's branch.
func scopeFromRequest(r *http.Request) (uuid.UUID, *uuid.UUID, error) {
	businessID, err := middleware.BusinessUUID(r.Context())
	if err != nil {
		return uuid.Nil, nil, err
	}
	branchID, err := validators.ParseQueryUUID(r, "branch")
	if err != nil {
		return uuid.Nil, nil, err
	}
	if branchID == nil {
		if branchID, err = middleware.BranchUUID(r.Context()); err != nil {
			return uuid.Nil, nil, err
		}
	}
	return businessID, branchID, nil
}
