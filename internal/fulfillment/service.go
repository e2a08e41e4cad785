package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/pricing"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PendingOrder groups one customer's open cart rows for the pickup desk.
type PendingOrder struct {
	CustomerID   uuid.UUID
	CustomerName string
	Items        []models.ShoppingListItem
	ItemCount    int
	Total        decimal.Decimal
	OldestItemAt time.Time
}

// Staff identifies the staff member acting on the desk.
type Staff struct {
	SubjectID  uuid.UUID
	BusinessID uuid.UUID
	BranchID   *uuid.UUID
	Role       enums.ActorRole
}

// CollectResult reports which rows were handed over.
type CollectResult struct {
	CustomerID  uuid.UUID
	ItemIDs     []uuid.UUID
	CollectedAt time.Time
}

// Service backs the staff click-and-collect desk.
type Service interface {
	PendingOrders(ctx context.Context, businessID uuid.UUID) ([]PendingOrder, error)
	MarkCollected(ctx context.Context, staff Staff, customerID uuid.UUID) (*CollectResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	emitter outbox.Emitter
	now     func() time.Time
}

func NewService(repo Repository, tx txRunner, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, emitter: emitter, now: time.Now}, nil
}

// PendingOrders lists open carts, longest waiting customer first.
func (s *service) PendingOrders(ctx context.Context, businessID uuid.UUID) ([]PendingOrder, error) {
	if businessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business id is required")
	}
	items, err := s.repo.ListOpenCartItems(ctx, businessID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}

	byCustomer := map[uuid.UUID]*PendingOrder{}
	ids := make([]uuid.UUID, 0)
	for _, item := range items {
		order, ok := byCustomer[item.CustomerID]
		if !ok {
			order = &PendingOrder{CustomerID: item.CustomerID, Total: decimal.Zero, OldestItemAt: item.CreatedAt}
			byCustomer[item.CustomerID] = order
			ids = append(ids, item.CustomerID)
		}
		order.Items = append(order.Items, item)
		order.ItemCount++
		order.Total = order.Total.Add(lineTotal(item))
		if item.CreatedAt.Before(order.OldestItemAt) {
			order.OldestItemAt = item.CreatedAt
		}
	}

	customers, err := s.repo.ListCustomers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	out := make([]PendingOrder, 0, len(ids))
	for _, id := range ids {
		order := byCustomer[id]
		if c, ok := customers[id]; ok {
			order.CustomerName = c.Name
		}
		out = append(out, *order)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OldestItemAt.Before(out[j].OldestItemAt)
	})
	return out, nil
}

// MarkCollected closes the customer's open cart rows in one transaction and
// emits click_and_collect_collected.
func (s *service) MarkCollected(ctx context.Context, staff Staff, customerID uuid.UUID) (*CollectResult, error) {
	if staff.BusinessID == uuid.Nil || customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business and customer are required")
	}
	result := &CollectResult{CustomerID: customerID, CollectedAt: s.now().UTC()}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := repo.ListOpenCartItems(ctx, staff.BusinessID, &customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending order")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no pending click and collect order for customer")
		}
		for _, item := range items {
			result.ItemIDs = append(result.ItemIDs, item.ID)
		}
		if _, err := repo.CloseItems(ctx, customerID, result.ItemIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close pending order")
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventClickAndCollectCollected,
			AggregateType: enums.AggregateShoppingCart,
			AggregateID:   customerID,
			Actor: &outbox.ActorRef{
				SubjectID: staff.SubjectID,
				BranchID:  staff.BranchID,
				Role:      staff.Role,
			},
			Data: payloads.ClickAndCollectCollectedEvent{
				CustomerID:  customerID,
				BusinessID:  staff.BusinessID,
				BranchID:    staff.BranchID,
				ItemIDs:     result.ItemIDs,
				CollectedBy: staff.SubjectID,
				CollectedAt: result.CollectedAt,
			},
			OccurredAt: result.CollectedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func lineTotal(item models.ShoppingListItem) decimal.Decimal {
	unit := decimal.Zero
	if item.Product != nil {
		unit = item.Product.Price
	}
	return pricing.LineTotal(item.CalculatedPrice, unit, item.Quantity)
}
