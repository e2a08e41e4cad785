package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

const commerceNotificationConsumer = "commerce-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns click-and-collect and voucher events into in-app notifications.
type Consumer struct {
	repo           repository
	subscription   *pubsub.Subscriber
	idempotency    *idempotency.Manager
	logg           *logger.Logger
	currencySymbol string
}

// NewConsumer builds a commerce notification consumer. subscription may be nil
// when the caller drives Handle directly.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger, currencySymbol string) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:           repo,
		subscription:   subscription,
		idempotency:    manager,
		logg:           logg,
		currencySymbol: currencySymbol,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("notification subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.Handle(ctx, msg.ID, msg.Attributes["event_type"], msg.Data)
		if result.Nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Result tells the receive loop whether to ack or nack a message.
type Result struct {
	Ack  bool
	Nack bool
}

// Handle processes one delivered envelope. Undecodable messages are acked so
// they do not redeliver forever; handler failures release the idempotency
// marker and nack.
func (c *Consumer) Handle(ctx context.Context, messageID, eventType string, data []byte) Result {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	switch enums.OutboxEventType(eventType) {
	case enums.EventClickAndCollectSubmitted, enums.EventClickAndCollectCollected, enums.EventVoucherRedeemed:
	default:
		c.logg.Debug(logCtx, "skipping event without notification")
		return Result{Ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return Result{Ack: true}
	}
	if _, err := uuid.Parse(envelope.EventID); err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return Result{Ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", envelope.EventID)

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, commerceNotificationConsumer, envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return Result{Nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return Result{Ack: true}
	}

	notification, err := c.build(enums.OutboxEventType(eventType), envelope.Data)
	if err == nil {
		err = c.repo.Create(ctx, notification)
	}
	if err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		if releaseErr := c.idempotency.Release(ctx, commerceNotificationConsumer, envelope.EventID); releaseErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency marker", releaseErr)
		}
		return Result{Nack: true}
	}

	c.logg.Info(c.logg.WithField(logCtx, "notification_type", notification.Type), "notification created")
	return Result{Ack: true}
}

func (c *Consumer) build(eventType enums.OutboxEventType, data json.RawMessage) (*models.Notification, error) {
	switch eventType {
	case enums.EventClickAndCollectSubmitted:
		var payload payloads.ClickAndCollectSubmittedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode submission payload: %w", err)
		}
		if payload.BusinessID == uuid.Nil {
			return nil, fmt.Errorf("business id missing")
		}
		return &models.Notification{
			BusinessID: payload.BusinessID,
			BranchID:   payload.BranchID,
			Type:       enums.NotificationTypeClickAndCollect,
			Title:      "New click & collect order",
			Message:    fmt.Sprintf("%s ready to pick, total %s%s.", itemCount(payload.ItemCount), c.currencySymbol, payload.Total.StringFixed(2)),
			Link:       stringPtr(fmt.Sprintf("/staff/click-and-collect/%s", payload.CustomerID)),
		}, nil

	case enums.EventClickAndCollectCollected:
		var payload payloads.ClickAndCollectCollectedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode collection payload: %w", err)
		}
		if payload.CustomerID == uuid.Nil {
			return nil, fmt.Errorf("customer id missing")
		}
		customerID := payload.CustomerID
		return &models.Notification{
			BusinessID: payload.BusinessID,
			CustomerID: &customerID,
			Type:       enums.NotificationTypeCollected,
			Title:      "Order collected",
			Message:    fmt.Sprintf("Thanks for shopping with us. %s handed over.", itemCount(len(payload.ItemIDs))),
			Link:       stringPtr("/shopping-list"),
		}, nil

	case enums.EventVoucherRedeemed:
		var payload payloads.VoucherRedeemedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode redemption payload: %w", err)
		}
		if payload.CustomerID == uuid.Nil {
			return nil, fmt.Errorf("customer id missing")
		}
		customerID := payload.CustomerID
		return &models.Notification{
			BusinessID: payload.BusinessID,
			CustomerID: &customerID,
			Type:       enums.NotificationTypeVoucherRedeemed,
			Title:      "Voucher redeemed",
			Message: fmt.Sprintf("You redeemed %s for %d points. Your code is %s. %d points left.",
				payload.VoucherName, payload.PointsSpent, payload.VoucherCode, payload.RemainingPoints),
			Link: stringPtr("/vouchers"),
		}, nil
	}
	return nil, fmt.Errorf("unsupported event type %s", eventType)
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func stringPtr(value string) *string {
	return &value
}
