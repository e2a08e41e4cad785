// Package vouchers exchanges loyalty points for voucher codes and manages
// the voucher catalog.
package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/db/models"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCodeAttempts bounds code regeneration after unique collisions.
const DefaultCodeAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Redemption is the outcome of a successful Redeem.
type Redemption struct {
	CustomerVoucher models.CustomerVoucher
	Voucher         models.Voucher
	Code            string
	RemainingPoints int
}

// PointsShortfall is attached to CodeInsufficientPoints errors.
type PointsShortfall struct {
	Balance    int `json:"balance"`
	PointsCost int `json:"points_cost"`
}

// LedgerOptions tunes a Ledger. Zero values fall back to defaults.
type LedgerOptions struct {
	CodeAttempts int
	Metrics      *metrics.EngineMetrics
	Logger       *logger.Logger
}

// Ledger redeems loyalty points for vouchers.
type Ledger struct {
	repo     Repository
	tx       txRunner
	emitter  outbox.Emitter
	attempts int
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
	codes    func() (string, error)
	now      func() time.Time
}

func NewLedger(repo Repository, tx txRunner, emitter outbox.Emitter, opts LedgerOptions) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("voucher repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	attempts := opts.CodeAttempts
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	return &Ledger{
		repo:     repo,
		tx:       tx,
		emitter:  emitter,
		attempts: attempts,
		metrics:  opts.Metrics,
		logg:     opts.Logger,
		codes:    GenerateCode,
		now:      time.Now,
	}, nil
}

// Redeem debits voucher.points_cost from the customer and issues a code.
// The debit, the redemption row and the voucher_redeemed event commit
// together; a concurrent redemption that drains the balance first makes this
// one fail with CodeInsufficientPoints and leaves nothing behind.
func (l *Ledger) Redeem(ctx context.Context, customerID, voucherID uuid.UUID) (*Redemption, error) {
	redemption, err := l.redeem(ctx, customerID, voucherID)
	switch {
	case err == nil:
		l.metrics.IncRedemption(metrics.ResultOK)
	case pkgerrors.Is(err, pkgerrors.CodeInsufficientPoints):
		l.metrics.IncRedemption(metrics.ResultInsufficientPoints)
	default:
		l.metrics.IncRedemption(metrics.ResultFailed)
	}
	return redemption, err
}

func (l *Ledger) redeem(ctx context.Context, customerID, voucherID uuid.UUID) (*Redemption, error) {
	voucher, err := l.repo.GetVoucher(ctx, voucherID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load voucher")
	}
	if voucher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "voucher not found")
	}
	customer, err := l.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer == nil || customer.BusinessID != voucher.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if !voucher.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher is not active")
	}
	if customer.LoyaltyPoints < voucher.PointsCost {
		return nil, insufficientPoints(customer.LoyaltyPoints, voucher.PointsCost)
	}

	for attempt := 1; attempt <= l.attempts; attempt++ {
		code, err := l.codes()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeRedemptionFailed, err, "generate voucher code")
		}
		redemption, err := l.redeemOnce(ctx, customer, voucher, code)
		if err == nil {
			l.logRedemption(ctx, redemption, attempt)
			return redemption, nil
		}
		if isCodeCollision(err) {
			l.metrics.IncCodeCollision()
			continue
		}
		if errors.Is(err, errBalanceTooLow) {
			balance := 0
			if current, loadErr := l.repo.GetCustomer(ctx, customerID); loadErr == nil && current != nil {
				balance = current.LoyaltyPoints
			}
			return nil, insufficientPoints(balance, voucher.PointsCost)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeRedemptionFailed, err, "redeem voucher")
	}
	return nil, pkgerrors.New(pkgerrors.CodeRedemptionFailed, "could not issue a unique voucher code")
}

func (l *Ledger) redeemOnce(ctx context.Context, customer *models.Customer, voucher *models.Voucher, code string) (*Redemption, error) {
	redeemedAt := l.now().UTC()
	var out *Redemption
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record, remaining, err := l.repo.RedeemTx(ctx, tx, customer.ID, voucher.ID, code, voucher.PointsCost, redeemedAt)
		if err != nil {
			return err
		}
		event := payloads.VoucherRedeemedEvent{
			CustomerVoucherID: record.ID,
			CustomerID:        customer.ID,
			BusinessID:        voucher.BusinessID,
			VoucherID:         voucher.ID,
			VoucherName:       voucher.Name,
			VoucherCode:       code,
			PointsSpent:       voucher.PointsCost,
			RemainingPoints:   remaining,
			RedeemedAt:        redeemedAt,
		}
		if err := l.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventVoucherRedeemed,
			AggregateType: enums.AggregateCustomerVoucher,
			AggregateID:   record.ID,
			Actor: &outbox.ActorRef{
				SubjectID:  customer.ID,
				CustomerID: &customer.ID,
				Role:       enums.ActorRoleCustomer,
			},
			Data:       event,
			OccurredAt: redeemedAt,
		}); err != nil {
			return err
		}
		record.Voucher = voucher
		out = &Redemption{
			CustomerVoucher: *record,
			Voucher:         *voucher,
			Code:            code,
			RemainingPoints: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) logRedemption(ctx context.Context, r *Redemption, attempt int) {
	if l.logg == nil {
		return
	}
	logCtx := l.logg.WithFields(ctx, map[string]any{
		"customer_id":         r.CustomerVoucher.CustomerID.String(),
		"voucher_id":          r.Voucher.ID.String(),
		"customer_voucher_id": r.CustomerVoucher.ID.String(),
		"points_spent":        r.CustomerVoucher.PointsSpent,
		"attempt":             attempt,
	})
	l.logg.Info(logCtx, "voucher redeemed")
}

func insufficientPoints(balance, cost int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientPoints, "not enough loyalty points").
		WithDetails(PointsShortfall{Balance: balance, PointsCost: cost})
}
