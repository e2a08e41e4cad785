// Package shoppinglist reconciles a customer's shopping list with the
// click-and-collect cart derived from it.
package shoppinglist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/fulfillment"
	"github.com/angelmondragon/retailpos-backend/internal/pricing"
	"github.com/angelmondragon/retailpos-backend/internal/stock"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxQuantity bounds the quantity of a single add.
const MaxQuantity = 999

const (
	kindCustom   = "custom"
	kindWeighted = "weighted"
	kindUnit     = "unit"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddItemInput describes one "add to list" request. Quantity defaults to 1.
type AddItemInput struct {
	ProductID         *uuid.UUID
	Quantity          int
	Weight            *decimal.Decimal
	IsClickAndCollect bool
	CustomText        string
}

// AddItemResult is the affected row plus the refreshed cart.
type AddItemResult struct {
	Item   models.ShoppingListItem
	Merged bool
	Cart   CartView
}

// CartView is the cart derived from the list: rows flagged for
// click-and-collect that are not completed.
type CartView struct {
	Items []models.ShoppingListItem
	Count int
	Total decimal.Decimal
}

// Destination routes a submitted cart to a business and optional branch.
type Destination struct {
	BusinessID uuid.UUID
	BranchID   *uuid.UUID
}

// Service is the cart reconciler.
type Service interface {
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*AddItemResult, error)
	Cart(ctx context.Context, customerID uuid.UUID) (*CartView, error)
	ListItems(ctx context.Context, customerID uuid.UUID) ([]models.ShoppingListItem, error)
	StageItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartView, error)
	RemoveFromCart(ctx context.Context, customerID, itemID uuid.UUID) (*CartView, error)
	SubmitCart(ctx context.Context, customerID uuid.UUID, dest Destination) (*fulfillment.Submission, error)
	ToggleCompleted(ctx context.Context, customerID, itemID uuid.UUID) (*models.ShoppingListItem, error)
	DeleteItem(ctx context.Context, customerID, itemID uuid.UUID) error
	ClearList(ctx context.Context, customerID uuid.UUID, completedOnly bool) (int64, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	products   productReader
	dispatcher fulfillment.Dispatcher
	metrics    *metrics.EngineMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService wires the reconciler. m and logg may be nil.
func NewService(repo Repository, tx txRunner, products productReader, dispatcher fulfillment.Dispatcher, m *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shopping list repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("fulfillment dispatcher required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		products:   products,
		dispatcher: dispatcher,
		metrics:    m,
		logg:       logg,
		now:        time.Now,
	}, nil
}

func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*AddItemResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 0 || input.Quantity > MaxQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity)).
			WithDetails(map[string]any{"field": "quantity"})
	}

	var (
		item   *models.ShoppingListItem
		merged bool
		kind   string
		err    error
	)
	if input.ProductID == nil {
		kind = kindCustom
		item, err = s.addCustom(ctx, customerID, input)
	} else {
		var product *models.Product
		kind = kindUnit
		product, err = s.products.GetProduct(ctx, *input.ProductID)
		if err == nil && product.IsWeighted {
			kind = kindWeighted
			item, err = s.addWeighted(ctx, customerID, product, input)
		} else if err == nil {
			item, merged, err = s.addUnit(ctx, customerID, product, input)
		}
	}
	if err != nil {
		s.metrics.IncCartAdd(kind, resultLabel(err))
		return nil, err
	}
	s.metrics.IncCartAdd(kind, metrics.ResultOK)

	cart, err := s.Cart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &AddItemResult{Item: *item, Merged: merged, Cart: *cart}, nil
}

func (s *service) addCustom(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.ShoppingListItem, error) {
	text := strings.TrimSpace(input.CustomText)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item text is required")
	}
	item := s.newItem(customerID, nil, text, input)
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert list item")
	}
	return item, nil
}

// addWeighted always inserts: distinct weights are not fungible.
func (s *service) addWeighted(ctx context.Context, customerID uuid.UUID, product *models.Product, input AddItemInput) (*models.ShoppingListItem, error) {
	if product.PricePerUnit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no price per unit")
	}
	weight, ok := pricing.NormalizeWeight(input.Weight)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be a positive number of at most "+pricing.MaxWeight.String()).
			WithDetails(map[string]any{"field": "weight"})
	}
	price, ok := pricing.ComputeWeightedPrice(&weight, *product.PricePerUnit)
	if !ok || price.GreaterThan(pricing.MaxLinePrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weighted price is out of range").
			WithDetails(map[string]any{"field": "weight"})
	}
	item := s.newItem(customerID, &product.ID, product.Name, input)
	item.Weight = &weight
	item.CalculatedPrice = &price
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert list item")
	}
	item.Product = product
	return item, nil
}

// addUnit merges into the open row for the product on the same side of the
// list, or inserts one. Both paths are stock guarded.
func (s *service) addUnit(ctx context.Context, customerID uuid.UUID, product *models.Product, input AddItemInput) (*models.ShoppingListItem, bool, error) {
	target, err := s.repo.FindMergeTarget(ctx, customerID, product.ID, input.IsClickAndCollect)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find list item")
	}

	if target == nil {
		if err := stock.CheckAvailability(input.Quantity, 0, product.StockQuantity); err != nil {
			return nil, false, err
		}
		input.Weight = nil
		item := s.newItem(customerID, &product.ID, product.Name, input)
		if err := s.repo.Insert(ctx, item); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert list item")
		}
		item.Product = product
		return item, false, nil
	}

	if err := stock.CheckAvailability(input.Quantity, target.Quantity, product.StockQuantity); err != nil {
		return nil, false, err
	}
	ok, err := s.repo.IncrementQuantity(ctx, target.ID, input.Quantity, product.StockQuantity)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge list item")
	}
	current, err := s.repo.Get(ctx, customerID, target.ID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload list item")
	}
	if !ok {
		// A concurrent add moved the row past what the guard allowed.
		if current == nil {
			return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "list item changed, please retry")
		}
		if err := stock.CheckAvailability(input.Quantity, current.Quantity, product.StockQuantity); err != nil {
			return nil, false, err
		}
		return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "list item changed, please retry")
	}
	if current == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "list item changed, please retry")
	}
	return current, true, nil
}

func (s *service) newItem(customerID uuid.UUID, productID *uuid.UUID, text string, input AddItemInput) *models.ShoppingListItem {
	now := s.now().UTC()
	return &models.ShoppingListItem{
		ID:                uuid.New(),
		CustomerID:        customerID,
		ProductID:         productID,
		Text:              text,
		Quantity:          input.Quantity,
		IsClickAndCollect: input.IsClickAndCollect,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *service) Cart(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	items, err := s.repo.ListCart(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return deriveCart(items), nil
}

func deriveCart(items []models.ShoppingListItem) *CartView {
	view := &CartView{Items: make([]models.ShoppingListItem, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		if !item.InCart() {
			continue
		}
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(lineTotal(item))
	}
	view.Count = len(view.Items)
	return view
}

func lineTotal(item models.ShoppingListItem) decimal.Decimal {
	unit := decimal.Zero
	if item.Product != nil {
		unit = item.Product.Price
	}
	return pricing.LineTotal(item.CalculatedPrice, unit, item.Quantity)
}

func (s *service) ListItems(ctx context.Context, customerID uuid.UUID) ([]models.ShoppingListItem, error) {
	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return items, nil
}

// StageItem moves a plain list row into the cart. A non-weighted row is folded
// into an existing cart row for the same product so the cart keeps one row
// per product.
func (s *service) StageItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartView, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.load(ctx, repo, customerID, itemID)
		if err != nil {
			return err
		}
		if item.InCart() {
			return nil
		}
		if item.Completed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed items cannot be staged")
		}
		if item.Product == nil || item.Product.IsWeighted || item.Weight != nil {
			return s.setFlag(ctx, repo, customerID, itemID, true)
		}

		target, err := repo.FindMergeTarget(ctx, customerID, item.Product.ID, true)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart item")
		}
		held := 0
		if target != nil {
			held = target.Quantity
		}
		if err := stock.CheckAvailability(item.Quantity, held, item.Product.StockQuantity); err != nil {
			return err
		}
		if target == nil {
			return s.setFlag(ctx, repo, customerID, itemID, true)
		}
		ok, err := repo.IncrementQuantity(ctx, target.ID, item.Quantity, item.Product.StockQuantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart changed, please retry")
		}
		if _, err := repo.Delete(ctx, customerID, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove merged item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Cart(ctx, customerID)
}

// RemoveFromCart reverts the row to a plain list entry. Idempotent.
func (s *service) RemoveFromCart(ctx context.Context, customerID, itemID uuid.UUID) (*CartView, error) {
	if _, err := s.load(ctx, s.repo, customerID, itemID); err != nil {
		return nil, err
	}
	if err := s.setFlag(ctx, s.repo, customerID, itemID, false); err != nil {
		return nil, err
	}
	return s.Cart(ctx, customerID)
}

// SubmitCart hands the cart snapshot to fulfilment. Cart membership is left
// untouched; the pickup desk closes the rows on collection.
func (s *service) SubmitCart(ctx context.Context, customerID uuid.UUID, dest Destination) (*fulfillment.Submission, error) {
	cart, err := s.Cart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart.Count == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	lines := make([]payloads.CartLine, 0, cart.Count)
	for _, item := range cart.Items {
		lines = append(lines, payloads.CartLine{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Text:      item.Text,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
			LinePrice: lineTotal(item),
		})
	}
	submission := fulfillment.Submission{
		ID:          uuid.New(),
		CustomerID:  customerID,
		BusinessID:  dest.BusinessID,
		BranchID:    dest.BranchID,
		Lines:       lines,
		Total:       cart.Total,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.dispatcher.SubmitCart(ctx, submission); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit cart")
	}
	s.metrics.IncSubmission()
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"customer_id":   customerID.String(),
			"submission_id": submission.ID.String(),
			"item_count":    cart.Count,
		})
		s.logg.Info(logCtx, "click and collect cart submitted")
	}
	return &submission, nil
}

func (s *service) ToggleCompleted(ctx context.Context, customerID, itemID uuid.UUID) (*models.ShoppingListItem, error) {
	item, err := s.load(ctx, s.repo, customerID, itemID)
	if err != nil {
		return nil, err
	}
	completed := !item.Completed
	if _, err := s.repo.UpdateFlags(ctx, customerID, itemID, map[string]any{"completed": completed}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update list item")
	}
	item.Completed = completed
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	found, err := s.repo.Delete(ctx, customerID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete list item")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "list item not found")
	}
	return nil
}

func (s *service) ClearList(ctx context.Context, customerID uuid.UUID, completedOnly bool) (int64, error) {
	if customerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	n, err := s.repo.DeleteByCustomer(ctx, customerID, completedOnly)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear list")
	}
	return n, nil
}

func (s *service) load(ctx context.Context, repo Repository, customerID, itemID uuid.UUID) (*models.ShoppingListItem, error) {
	item, err := repo.Get(ctx, customerID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load list item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "list item not found")
	}
	return item, nil
}

func (s *service) setFlag(ctx context.Context, repo Repository, customerID, itemID uuid.UUID, inCart bool) error {
	if _, err := repo.UpdateFlags(ctx, customerID, itemID, map[string]any{"is_click_and_collect": inCart}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update list item")
	}
	return nil
}

func resultLabel(err error) string {
	if pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		return metrics.ResultInsufficientStock
	}
	return metrics.ResultFailed
}
