package classifier

import (
	"context"
	"errors"
)

// Gateway classifies a customer utterance against the payment offer.
//
// It is a pure adapter: no retries, no state. Timeouts, transport faults and
// schema-invalid model output all surface as ErrUnavailable; the conversation
// engine maps that to the unclear/0 fallback so the call always gets a valid
// next prompt.
type Gateway interface {
	Classify(ctx context.Context, req Request) (Result, error)
}

var ErrUnavailable = errors.New("classifier: unavailable")

type Request struct {
	AmountOwed  float64
	OfferedPlan string

	// Utterance is the new speech-to-text result for this turn.
	Utterance string

	// PriorContext optionally carries earlier turns for disambiguation.
	PriorContext string
}

type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnclear Answer = "unclear"
)

type Result struct {
	Answer     Answer `json:"answer"`
	Confidence int    `json:"confidence"` // 0-100
}
