package conversation

import (
	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
	"github.com/victorhinojosa/voice-ivr-payment/internal/classifier"
)

const (
	DefaultConfidenceThreshold = 50
	DefaultMaxClarifyRetries   = 3
)

// DecisionInput is everything the policy needs for one classified turn.
type DecisionInput struct {
	Answer     classifier.Answer
	Confidence int

	// RetryCount is the persisted clarification count before this turn.
	RetryCount int

	Threshold  int
	MaxRetries int
}

// Decision is the pure outcome of the policy: the next intent/status pair and
// the updated retry count. Reason is for logs and the audit trail only.
type Decision struct {
	Intent     callstore.Intent
	Status     callstore.Status
	RetryCount int
	Reason     string
}

// Decide maps a classifier result onto the negotiation state machine.
//
// A confident yes confirms, a confident no hands off to a specialist, and
// everything else loops through clarification until the retry cap closes the
// call as no_response. Deterministic: same input, same decision.
func Decide(in DecisionInput) Decision {
	threshold := in.Threshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	maxRetries := in.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxClarifyRetries
	}

	if in.Confidence >= threshold {
		switch in.Answer {
		case classifier.AnswerYes:
			return Decision{
				Intent:     callstore.IntentWillingToPay,
				Status:     callstore.StatusConfirmed,
				RetryCount: in.RetryCount,
				Reason:     "accepted",
			}
		case classifier.AnswerNo:
			return Decision{
				Intent:     callstore.IntentNeedsNegotiation,
				Status:     callstore.StatusNeedsNegotiation,
				RetryCount: in.RetryCount,
				Reason:     "declined",
			}
		}
	}

	reason := "unclear_answer"
	if in.Answer != classifier.AnswerUnclear {
		reason = "low_confidence"
	}

	retries := in.RetryCount + 1
	if retries >= maxRetries {
		// Cap reached: close the call instead of clarifying forever.
		return Decision{
			Intent:     callstore.IntentUnclear,
			Status:     callstore.StatusNoResponse,
			RetryCount: retries,
			Reason:     "retry_exhausted",
		}
	}
	return Decision{
		Intent:     callstore.IntentUnclear,
		Status:     callstore.StatusPendingClarification,
		RetryCount: retries,
		Reason:     reason,
	}
}
