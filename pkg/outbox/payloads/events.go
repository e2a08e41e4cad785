package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one cart row as handed to the fulfilment collaborator.
type CartLine struct {
	ItemID    uuid.UUID        `json:"item_id"`
	ProductID *uuid.UUID       `json:"product_id,omitempty"`
	Text      string           `json:"text"`
	Quantity  int              `json:"quantity"`
	Weight    *decimal.Decimal `json:"weight,omitempty"`
	LinePrice decimal.Decimal  `json:"line_price"`
}

// ClickAndCollectSubmittedEvent is emitted when a customer submits their cart.
type ClickAndCollectSubmittedEvent struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	BusinessID   uuid.UUID       `json:"business_id"`
	BranchID     *uuid.UUID      `json:"branch_id,omitempty"`
	Items        []CartLine      `json:"items"`
	ItemCount    int             `json:"item_count"`
	Total        decimal.Decimal `json:"total"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// ClickAndCollectCollectedEvent is emitted when staff hand over a customer's order.
type ClickAndCollectCollectedEvent struct {
	CustomerID  uuid.UUID   `json:"customer_id"`
	BusinessID  uuid.UUID   `json:"business_id"`
	BranchID    *uuid.UUID  `json:"branch_id,omitempty"`
	ItemIDs     []uuid.UUID `json:"item_ids"`
	CollectedBy uuid.UUID   `json:"collected_by"`
	CollectedAt time.Time   `json:"collected_at"`
}

// VoucherRedeemedEvent is emitted once points have been exchanged for a voucher.
type VoucherRedeemedEvent struct {
	CustomerVoucherID uuid.UUID `json:"customer_voucher_id"`
	CustomerID        uuid.UUID `json:"customer_id"`
	BusinessID        uuid.UUID `json:"business_id"`
	VoucherID         uuid.UUID `json:"voucher_id"`
	VoucherName       string    `json:"voucher_name"`
	VoucherCode       string    `json:"voucher_code"`
	PointsSpent       int       `json:"points_spent"`
	RemainingPoints   int       `json:"remaining_points"`
	RedeemedAt        time.Time `json:"redeemed_at"`
}
