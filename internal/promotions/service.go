package promotions

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/catalog"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/google/uuid"
)

type promotionStore interface {
	ListActive(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, now time.Time) ([]models.Promotion, error)
}

type productLister interface {
	ListProducts(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, filter catalog.Filter) ([]models.Product, error)
}

// ActivePromotion is a running promotion with its label and priced products.
type ActivePromotion struct {
	Promotion models.Promotion
	Label     string
	Products  []PricedProduct
}

// Service lists promotions for display.
type Service interface {
	ActivePromotions(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, now time.Time) ([]ActivePromotion, error)
}

type service struct {
	store    promotionStore
	products productLister
	currency string
}

func NewService(store promotionStore, products productLister, currency string) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("promotion store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &service{store: store, products: products, currency: currency}, nil
}

func (s *service) ActivePromotions(ctx context.Context, businessID uuid.UUID, branchID *uuid.UUID, now time.Time) ([]ActivePromotion, error) {
	if businessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id is required")
	}
	promos, err := s.store.ListActive(ctx, businessID, branchID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promotions")
	}

	var catalogProducts []models.Product
	out := make([]ActivePromotion, 0, len(promos))
	for _, promo := range promos {
		var products []models.Product
		if promo.AppliesTo == enums.PromotionScopeSpecific {
			for _, link := range promo.Products {
				if link.Product != nil {
					products = append(products, *link.Product)
				}
			}
		} else {
			if catalogProducts == nil {
				catalogProducts, err = s.products.ListProducts(ctx, businessID, branchID, catalog.Filter{})
				if err != nil {
					return nil, err
				}
			}
			products = catalogProducts
		}

		priced := make([]PricedProduct, 0, len(products))
		for _, product := range products {
			priced = append(priced, Price(promo, product))
		}
		out = append(out, ActivePromotion{
			Promotion: promo,
			Label:     FormatDiscount(promo.DiscountType, promo.DiscountValue, s.currency),
			Products:  priced,
		})
	}
	return out, nil
}
