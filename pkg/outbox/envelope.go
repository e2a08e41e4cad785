package outbox

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	SubjectID  uuid.UUID       `json:"subjectId"`
	CustomerID *uuid.UUID      `json:"customerId,omitempty"`
	BranchID   *uuid.UUID      `json:"branchId,omitempty"`
	Role       enums.ActorRole `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
