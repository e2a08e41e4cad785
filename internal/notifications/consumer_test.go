package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryStore struct {
	keys map[string]bool
}

func (m *memoryStore) Get(context.Context, string) (string, error) { return "", nil }

func (m *memoryStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.keys, key)
	}
	return nil
}

func newTestConsumer(t *testing.T, repo *fakeRepository) (*Consumer, *memoryStore) {
	t.Helper()
	store := &memoryStore{keys: map[string]bool{}}
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("idempotency manager: %v", err)
	}
	consumer, err := NewConsumer(repo, nil, manager, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), "€")
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return consumer, store
}

func envelopeFor(t *testing.T, eventID string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	out, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: eventID, OccurredAt: time.Now(), Data: raw})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func TestConsumerNotifiesStaffOfSubmission(t *testing.T) {
	repo := &fakeRepository{}
	consumer, _ := newTestConsumer(t, repo)
	branchID := uuid.New()
	payload := payloads.ClickAndCollectSubmittedEvent{
		SubmissionID: uuid.New(),
		CustomerID:   uuid.New(),
		BusinessID:   uuid.New(),
		BranchID:     &branchID,
		ItemCount:    3,
		Total:        decimal.RequireFromString("12.5"),
	}

	result := consumer.Handle(context.Background(), "m1", string(enums.EventClickAndCollectSubmitted), envelopeFor(t, uuid.NewString(), payload))
	if !result.Ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.created))
	}
	n := repo.created[0]
	if n.CustomerID != nil || n.BranchID == nil || *n.BranchID != branchID {
		t.Fatalf("expected branch staff notification, got %+v", n)
	}
	if n.Type != enums.NotificationTypeClickAndCollect {
		t.Fatalf("unexpected type %s", n.Type)
	}
	if !strings.Contains(n.Message, "3 items") || !strings.Contains(n.Message, "€12.50") {
		t.Fatalf("unexpected message %q", n.Message)
	}
}

func TestConsumerNotifiesCustomerOfRedemption(t *testing.T) {
	repo := &fakeRepository{}
	consumer, _ := newTestConsumer(t, repo)
	customerID := uuid.New()
	payload := payloads.VoucherRedeemedEvent{
		CustomerID:      customerID,
		BusinessID:      uuid.New(),
		VoucherName:     "Coffee",
		VoucherCode:     "VCH-ABCD-EFGH-JKLM",
		PointsSpent:     100,
		RemainingPoints: 50,
	}

	result := consumer.Handle(context.Background(), "m1", string(enums.EventVoucherRedeemed), envelopeFor(t, uuid.NewString(), payload))
	if !result.Ack || len(repo.created) != 1 {
		t.Fatalf("expected one notification, result %+v created %d", result, len(repo.created))
	}
	n := repo.created[0]
	if n.CustomerID == nil || *n.CustomerID != customerID {
		t.Fatalf("expected customer notification, got %+v", n)
	}
	if !strings.Contains(n.Message, "VCH-ABCD-EFGH-JKLM") {
		t.Fatalf("code missing from message %q", n.Message)
	}
}

func TestConsumerSkipsDuplicateDeliveries(t *testing.T) {
	repo := &fakeRepository{}
	consumer, _ := newTestConsumer(t, repo)
	data := envelopeFor(t, uuid.NewString(), payloads.ClickAndCollectCollectedEvent{
		CustomerID: uuid.New(),
		BusinessID: uuid.New(),
		ItemIDs:    []uuid.UUID{uuid.New()},
	})

	for i := 0; i < 2; i++ {
		if result := consumer.Handle(context.Background(), "m", string(enums.EventClickAndCollectCollected), data); !result.Ack {
			t.Fatalf("delivery %d: expected ack", i)
		}
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected a single notification, got %d", len(repo.created))
	}
	if !strings.Contains(repo.created[0].Message, "1 item ") {
		t.Fatalf("unexpected message %q", repo.created[0].Message)
	}
}

func TestConsumerReleasesMarkerOnFailure(t *testing.T) {
	repo := &fakeRepository{createErr: errors.New("db down")}
	consumer, store := newTestConsumer(t, repo)
	data := envelopeFor(t, uuid.NewString(), payloads.VoucherRedeemedEvent{CustomerID: uuid.New(), BusinessID: uuid.New()})

	result := consumer.Handle(context.Background(), "m", string(enums.EventVoucherRedeemed), data)
	if !result.Nack {
		t.Fatalf("expected nack, got %+v", result)
	}
	if len(store.keys) != 0 {
		t.Fatalf("expected idempotency marker released, got %v", store.keys)
	}

	repo.createErr = nil
	if result := consumer.Handle(context.Background(), "m", string(enums.EventVoucherRedeemed), data); !result.Ack {
		t.Fatalf("expected retry to succeed, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected notification after retry, got %d", len(repo.created))
	}
}

func TestConsumerAcksUnusableMessages(t *testing.T) {
	repo := &fakeRepository{}
	consumer, _ := newTestConsumer(t, repo)

	cases := map[string]struct {
		eventType string
		data      []byte
	}{
		"other event":  {eventType: "order_created", data: []byte(`{}`)},
		"bad envelope": {eventType: string(enums.EventVoucherRedeemed), data: []byte(`not-json`)},
		"bad event id": {eventType: string(enums.EventVoucherRedeemed), data: envelopeFor(t, "nope", map[string]any{})},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if result := consumer.Handle(context.Background(), "m", tc.eventType, tc.data); !result.Ack {
				t.Fatalf("expected ack, got %+v", result)
			}
		})
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(repo.created))
	}
}
