// Package fulfillment hands submitted click-and-collect carts to the pickup
// desk and lets staff mark them collected.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Submission is the snapshot of a cart handed to fulfilment.
type Submission struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	BusinessID  uuid.UUID
	BranchID    *uuid.UUID
	Lines       []payloads.CartLine
	Total       decimal.Decimal
	SubmittedAt time.Time
}

// Dispatcher receives submitted carts.
type Dispatcher interface {
	SubmitCart(ctx context.Context, submission Submission) error
}

// OutboxDispatcher records submissions as click_and_collect_submitted events.
// The outbox publisher relays them to Pub/Sub.
type OutboxDispatcher struct {
	tx      txRunner
	emitter outbox.Emitter
}

func NewOutboxDispatcher(tx txRunner, emitter outbox.Emitter) (*OutboxDispatcher, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &OutboxDispatcher{tx: tx, emitter: emitter}, nil
}

func (d *OutboxDispatcher) SubmitCart(ctx context.Context, submission Submission) error {
	if submission.ID == uuid.Nil {
		return fmt.Errorf("submission id required")
	}
	if len(submission.Lines) == 0 {
		return fmt.Errorf("submission has no lines")
	}
	event := payloads.ClickAndCollectSubmittedEvent{
		SubmissionID: submission.ID,
		CustomerID:   submission.CustomerID,
		BusinessID:   submission.BusinessID,
		BranchID:     submission.BranchID,
		Items:        submission.Lines,
		ItemCount:    len(submission.Lines),
		Total:        submission.Total,
		SubmittedAt:  submission.SubmittedAt,
	}
	return d.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return d.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventClickAndCollectSubmitted,
			AggregateType: enums.AggregateShoppingCart,
			AggregateID:   submission.ID,
			Actor: &outbox.ActorRef{
				SubjectID:  submission.CustomerID,
				CustomerID: &submission.CustomerID,
				BranchID:   submission.BranchID,
				Role:       enums.ActorRoleCustomer,
			},
			Data:       event,
			OccurredAt: submission.SubmittedAt,
		})
	})
}
