package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	customerVoucherID := uuid.New()
	payloadBytes := mustMarshal(t, payloads.VoucherRedeemedEvent{
		CustomerVoucherID: customerVoucherID,
		CustomerID:        uuid.New(),
		VoucherCode:       "VCH-ABCD-EFGH-JKLM",
		PointsSpent:       100,
	})

	event := models.OutboxEvent{
		EventType:     enums.EventVoucherRedeemed,
		AggregateType: enums.AggregateCustomerVoucher,
		AggregateID:   customerVoucherID,
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Descriptor.Topic != "commerce-topic" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.VoucherRedeemedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.VoucherCode != "VCH-ABCD-EFGH-JKLM" || payload.PointsSpent != 100 {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if resolved.Envelope.EventID == "" {
		t.Fatalf("envelope missing event id")
	}
}

func TestEventRegistryRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown event": {
			EventType:     enums.OutboxEventType("order_created"),
			AggregateType: enums.AggregateShoppingCart,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"aggregate mismatch": {
			EventType:     enums.EventClickAndCollectSubmitted,
			AggregateType: enums.AggregateCustomerVoucher,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{"items":[]}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventClickAndCollectSubmitted,
			AggregateType: enums.AggregateShoppingCart,
			AggregateID:   uuid.Nil,
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"null payload": {
			EventType:     enums.EventClickAndCollectSubmitted,
			AggregateType: enums.AggregateShoppingCart,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte("null")),
		},
		"broken envelope": {
			EventType:     enums.EventVoucherRedeemed,
			AggregateType: enums.AggregateCustomerVoucher,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"data":`),
		},
	}

	for name, event := range cases {
		_, err := reg.Resolve(event)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		var nonRetry NonRetryableError
		if !errors.As(err, &nonRetry) {
			t.Fatalf("%s: expected non-retryable error, got %T", name, err)
		}
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected missing topic error")
	}
}

func TestDecodePayload(t *testing.T) {
	reg := newTestEventRegistry(t)
	desc, ok := reg.Descriptor(enums.EventClickAndCollectSubmitted)
	if !ok {
		t.Fatal("expected descriptor for submitted event")
	}
	envelope := outbox.PayloadEnvelope{Data: mustMarshal(t, payloads.ClickAndCollectSubmittedEvent{ItemCount: 3})}
	decoded, err := DecodePayload(desc, envelope)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got := decoded.(*payloads.ClickAndCollectSubmittedEvent).ItemCount; got != 3 {
		t.Fatalf("expected item count 3, got %d", got)
	}
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{CommerceTopic: "commerce-topic"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}
