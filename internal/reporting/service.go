package reporting

import (
	"context"
	"errors"

	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
)

// OutcomeSummary aggregates the outcome distribution of all persisted
// call records. Built from the immutable call records, never from live
// conversation state.
type OutcomeSummary struct {
	TotalCalls int `json:"total_calls"`

	AwaitingResponse     int `json:"awaiting_response"`
	PendingClarification int `json:"pending_clarification"`
	Confirmed            int `json:"confirmed"`
	NeedsNegotiation     int `json:"needs_negotiation"`
	NoResponse           int `json:"no_response"`

	// ClarificationRate is the share of calls that needed at least one
	// retry prompt, expressed as a percentage rounded down.
	ClarificationRate int `json:"clarification_rate"`

	// ConfirmationRate is confirmed calls over total, as a percentage.
	ConfirmationRate int `json:"confirmation_rate"`
}

type Service struct {
	store callstore.Store
}

func NewService(store callstore.Store) *Service { return &Service{store: store} }

func (s *Service) Summary(ctx context.Context) (OutcomeSummary, error) {
	if s.store == nil {
		return OutcomeSummary{}, errors.New("reporting: store not configured")
	}

	rows, err := s.store.ListAll(ctx)
	if err != nil {
		return OutcomeSummary{}, err
	}

	out := OutcomeSummary{}
	var retried int
	for _, r := range rows {
		out.TotalCalls++
		if r.RetryCount > 0 {
			retried++
		}
		switch r.Status {
		case callstore.StatusAwaitingResponse:
			out.AwaitingResponse++
		case callstore.StatusPendingClarification:
			out.PendingClarification++
		case callstore.StatusConfirmed:
			out.Confirmed++
		case callstore.StatusNeedsNegotiation:
			out.NeedsNegotiation++
		case callstore.StatusNoResponse:
			out.NoResponse++
		}
	}
	if out.TotalCalls > 0 {
		out.ClarificationRate = retried * 100 / out.TotalCalls
		out.ConfirmationRate = out.Confirmed * 100 / out.TotalCalls
	}
	return out, nil
}
