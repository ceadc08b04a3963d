package callstore

import "time"

// CallRecord is the single persisted row for one physical phone call.
//
// Invariants:
// - CallID is the unique key; every webhook delivery for one call maps to it.
// - Transcript is append-only. CallerPhone and PaymentPlan are set once.
// - RetryCount never decreases.
// - Terminal statuses are absorbing; the engine never mutates a record past one.

type CallRecord struct {
	CallID      string `json:"call_id" db:"call_id"`
	CallerPhone string `json:"caller_phone" db:"caller_phone"`

	// Transcript accumulates every customer utterance for the call,
	// joined by TranscriptSeparator in arrival order.
	Transcript string `json:"transcript" db:"transcript"`

	Intent      Intent `json:"intent" db:"intent"`
	PaymentPlan string `json:"payment_plan" db:"payment_plan"`

	// ReplyText is the last prompt spoken back to the customer.
	ReplyText  string `json:"reply_text" db:"reply_text"`
	Confidence int    `json:"confidence" db:"confidence"`

	Status Status `json:"status" db:"status"`

	// ConfirmationResponse is the last raw yes/no/unclear classification.
	ConfirmationResponse string `json:"confirmation_response,omitempty" db:"confirmation_response"`

	RetryCount int `json:"retry_count" db:"retry_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TranscriptSeparator joins consecutive utterances in the transcript column.
const TranscriptSeparator = " → "

type Status string

const (
	// StatusAwaitingResponse is the state between the greeting and the
	// first classified customer turn.
	StatusAwaitingResponse Status = "awaiting_response"

	StatusPendingClarification Status = "pending_clarification"

	StatusConfirmed        Status = "confirmed"
	StatusNeedsNegotiation Status = "needs_negotiation"
	StatusNoResponse       Status = "no_response"
)

// Terminal reports whether no further transition is allowed for the call.
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusNeedsNegotiation, StatusNoResponse:
		return true
	default:
		return false
	}
}

type Intent string

const (
	IntentWillingToPay     Intent = "willing_to_pay"
	IntentNeedsNegotiation Intent = "needs_negotiation"
	IntentUnclear          Intent = "unclear"
	IntentNoResponse       Intent = "no_response"
)
