package audit

import "time"

// Event is an immutable, append-only record of a conversation transition.
//
// Invariants:
// - Events are never updated or deleted.
// - Recording is best-effort; a failed append must never block a call turn.

type Event struct {
	ID     string    `json:"id" db:"id"`
	Type   EventType `json:"type" db:"type"`
	CallID string    `json:"call_id" db:"call_id"`

	// FromStatus/ToStatus capture the state machine edge taken this turn.
	FromStatus string `json:"from_status,omitempty" db:"from_status"`
	ToStatus   string `json:"to_status" db:"to_status"`

	// Reason is a short machine-readable cause, e.g. "accepted",
	// "low_confidence", "retry_exhausted", "classifier_unavailable".
	Reason string `json:"reason,omitempty" db:"reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallStarted  EventType = "call_started"
	EventTypeTurnDecision EventType = "turn_decision"
)
