package callstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("callstore: call record not found")

// Update carries the per-turn mutation applied through Upsert.
//
// Field semantics enforced by every implementation:
// - Utterance, when non-empty, is appended to the transcript, never replacing it.
// - CallerPhone and PaymentPlan only take effect on a row that doesn't have
//   them yet.
// - RetryCount can only grow the persisted value.
// - Everything else overwrites (last decision wins).
type Update struct {
	CallerPhone string
	PaymentPlan string

	Utterance string

	Intent               Intent
	Status               Status
	ReplyText            string
	Confidence           int
	ConfirmationResponse string
	RetryCount           int
}

// Store persists at most one CallRecord per call id.
//
// Upsert must be atomic for concurrent deliveries of the same call id: two
// near-simultaneous turns may not create two rows, and neither may drop the
// other's transcript append. Cross-field read-modify-write serialization is
// the conversation engine's job (per-call lock); the store only guarantees
// the row-level merge discipline above.
type Store interface {
	Upsert(ctx context.Context, callID string, u Update) (CallRecord, error)
	Get(ctx context.Context, callID string) (CallRecord, error)

	// ListAll returns every record, newest first. Consumed by the dashboard.
	ListAll(ctx context.Context) ([]CallRecord, error)
}
