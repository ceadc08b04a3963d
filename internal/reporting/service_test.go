package reporting

import (
	"context"
	"testing"

	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
)

func seedStore(t *testing.T) *callstore.MemoryStore {
	t.Helper()
	store := callstore.NewMemoryStore()
	ctx := context.Background()

	seed := []struct {
		callID string
		update callstore.Update
	}{
		{"CA1", callstore.Update{Status: callstore.StatusConfirmed, Intent: callstore.IntentWillingToPay}},
		{"CA2", callstore.Update{Status: callstore.StatusConfirmed, Intent: callstore.IntentWillingToPay, RetryCount: 1}},
		{"CA3", callstore.Update{Status: callstore.StatusNeedsNegotiation, Intent: callstore.IntentNeedsNegotiation}},
		{"CA4", callstore.Update{Status: callstore.StatusNoResponse, Intent: callstore.IntentNoResponse, RetryCount: 3}},
		{"CA5", callstore.Update{Status: callstore.StatusAwaitingResponse}},
	}
	for _, s := range seed {
		if _, err := store.Upsert(ctx, s.callID, s.update); err != nil {
			t.Fatalf("seed %s: %v", s.callID, err)
		}
	}
	return store
}

func TestSummary_CountsPerOutcome(t *testing.T) {
	svc := NewService(seedStore(t))

	out, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if out.TotalCalls != 5 {
		t.Fatalf("expected 5 calls, got %d", out.TotalCalls)
	}
	if out.Confirmed != 2 || out.NeedsNegotiation != 1 || out.NoResponse != 1 || out.AwaitingResponse != 1 {
		t.Fatalf("unexpected distribution: %+v", out)
	}
}

func TestSummary_Rates(t *testing.T) {
	svc := NewService(seedStore(t))

	out, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// 2 of 5 calls needed a retry prompt; 2 of 5 confirmed.
	if out.ClarificationRate != 40 {
		t.Fatalf("clarification rate = %d", out.ClarificationRate)
	}
	if out.ConfirmationRate != 40 {
		t.Fatalf("confirmation rate = %d", out.ConfirmationRate)
	}
}

func TestSummary_EmptyStore(t *testing.T) {
	svc := NewService(callstore.NewMemoryStore())

	out, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.TotalCalls != 0 || out.ConfirmationRate != 0 {
		t.Fatalf("expected zero summary, got %+v", out)
	}
}
