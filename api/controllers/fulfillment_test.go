package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/retailpos-backend/internal/fulfillment"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubDesk struct {
	staff    fulfillment.Staff
	customer uuid.UUID
	err      error
}

func (s *stubDesk) PendingOrders(context.Context, uuid.UUID) ([]fulfillment.PendingOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	oldest := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []fulfillment.PendingOrder{{
		CustomerID:   uuid.New(),
		CustomerName: "Ana",
		Items:        []models.ShoppingListItem{{ID: uuid.New(), Text: "Milk", Quantity: 2}},
		ItemCount:    1,
		Total:        decimal.RequireFromString("3.20"),
		OldestItemAt: oldest,
	}}, nil
}

func (s *stubDesk) MarkCollected(_ context.Context, staff fulfillment.Staff, customerID uuid.UUID) (*fulfillment.CollectResult, error) {
	s.staff = staff
	s.customer = customerID
	if s.err != nil {
		return nil, s.err
	}
	return &fulfillment.CollectResult{CustomerID: customerID, ItemIDs: []uuid.UUID{uuid.New()}, CollectedAt: time.Now()}, nil
}

func TestPendingPickups(t *testing.T) {
	rec := serve(t, staff(uuid.New(), nil), http.MethodGet, "/staff/click-and-collect", "/staff/click-and-collect", "", PendingPickups(&stubDesk{}, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	orders := decode[[]pendingOrderResponse](t, rec)
	if len(orders) != 1 || orders[0].CustomerName != "Ana" || len(orders[0].Items) != 1 {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if !orders[0].WaitingSince.Equal(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected waiting_since %s", orders[0].WaitingSince)
	}
}

func TestMarkCollectedPassesStaffIdentity(t *testing.T) {
	desk := &stubDesk{}
	businessID := uuid.New()
	branchID := uuid.New()
	customerID := uuid.New()

	rec := serve(t, staff(businessID, &branchID), http.MethodPost, "/staff/click-and-collect/{customerId}/collect",
		"/staff/click-and-collect/"+customerID.String()+"/collect", "", MarkCollected(desk, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if desk.customer != customerID {
		t.Fatalf("expected customer %s got %s", customerID, desk.customer)
	}
	if desk.staff.BusinessID != businessID || desk.staff.BranchID == nil || *desk.staff.BranchID != branchID {
		t.Fatalf("unexpected staff %+v", desk.staff)
	}
	if desk.staff.Role != enums.ActorRoleStaff {
		t.Fatalf("expected staff role, got %s", desk.staff.Role)
	}
	if got := decode[collectResponse](t, rec); got.CustomerID != customerID || len(got.ItemIDs) != 1 {
		t.Fatalf("unexpected response %+v", got)
	}
}

func TestMarkCollectedNothingPending(t *testing.T) {
	desk := &stubDesk{err: pkgerrors.New(pkgerrors.CodeNotFound, "no pending click-and-collect items")}
	rec := serve(t, staff(uuid.New(), nil), http.MethodPost, "/staff/click-and-collect/{customerId}/collect",
		"/staff/click-and-collect/"+uuid.NewString()+"/collect", "", MarkCollected(desk, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
