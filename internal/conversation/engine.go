package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/victorhinojosa/voice-ivr-payment/internal/audit"
	"github.com/victorhinojosa/voice-ivr-payment/internal/callstore"
	"github.com/victorhinojosa/voice-ivr-payment/internal/classifier"
	"github.com/victorhinojosa/voice-ivr-payment/pkg/logger"
)

// Config carries the negotiation parameters. OfferedPlan and AmountOwed are
// environment-configured, not derived per call.
type Config struct {
	OfferedPlan string
	AmountOwed  float64

	ConfidenceThreshold int // default 50
	MaxClarifyRetries   int // default 3
}

// StartInput is the first inbound event of a physical call.
type StartInput struct {
	CallID      string
	CallerPhone string
}

// Turn is one inbound utterance (or silence) for an ongoing call.
// Ephemeral: consumed to produce a state transition, never persisted itself.
type Turn struct {
	CallID      string
	CallerPhone string

	// Utterance is empty when the telephony layer reports silence/timeout.
	Utterance string

	ReceivedAt time.Time
}

// Engine is the conversation state machine. It holds no per-call state:
// every turn reloads the persisted record under a per-call lock, so the
// record is the single source of truth across process restarts.
type Engine struct {
	store      callstore.Store
	classifier classifier.Gateway
	locks      TurnLocker
	audit      *audit.Service

	cfg Config
}

// NewEngine wires the engine. locks may be nil (falls back to an in-process
// keyed mutex); auditSvc may be nil (no transition trail).
func NewEngine(store callstore.Store, gw classifier.Gateway, locks TurnLocker, auditSvc *audit.Service, cfg Config) *Engine {
	if locks == nil {
		locks = NewMemoryLocker()
	}
	return &Engine{
		store:      store,
		classifier: gw,
		locks:      locks,
		audit:      auditSvc,
		cfg:        cfg,
	}
}

// Start handles the first inbound event of a call: creates the record and
// returns the greeting. Duplicate deliveries replay the last prompt instead
// of inserting again.
func (e *Engine) Start(ctx context.Context, in StartInput) (Reply, error) {
	if in.CallID == "" {
		return Reply{}, errors.New("conversation: call_id required")
	}

	unlock, err := e.locks.Lock(ctx, in.CallID)
	if err != nil {
		return Reply{}, err
	}
	defer unlock()

	rec, err := e.store.Get(ctx, in.CallID)
	switch {
	case err == nil:
		// Duplicate greeting delivery for a known call.
		if rec.ReplyText != "" {
			return Reply{Text: rec.ReplyText, GatherMore: !rec.Status.Terminal()}, nil
		}
		return GreetingReply(e.planFor(rec), e.cfg.AmountOwed), nil
	case errors.Is(err, callstore.ErrNotFound):
		// first event for this call; fall through to create
	default:
		return Reply{}, fmt.Errorf("conversation: load call %s: %w", in.CallID, err)
	}

	greeting := GreetingReply(e.cfg.OfferedPlan, e.cfg.AmountOwed)
	_, err = e.store.Upsert(ctx, in.CallID, callstore.Update{
		CallerPhone: in.CallerPhone,
		PaymentPlan: e.cfg.OfferedPlan,
		Status:      callstore.StatusAwaitingResponse,
		ReplyText:   greeting.Text,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("conversation: create call %s: %w", in.CallID, err)
	}

	e.logStart(ctx, in.CallID)
	return greeting, nil
}

// HandleTurn consumes one utterance (or silence) and advances the state
// machine. The only error it returns is persistence failure: without the
// store the at-most-one-record guarantee is gone, so the turn fails loudly.
func (e *Engine) HandleTurn(ctx context.Context, t Turn) (Reply, error) {
	if t.CallID == "" {
		return Reply{}, errors.New("conversation: call_id required")
	}

	unlock, err := e.locks.Lock(ctx, t.CallID)
	if err != nil {
		return Reply{}, err
	}
	defer unlock()

	rec, err := e.store.Get(ctx, t.CallID)
	if err != nil && !errors.Is(err, callstore.ErrNotFound) {
		return Reply{}, fmt.Errorf("conversation: load call %s: %w", t.CallID, err)
	}
	// On ErrNotFound rec is zero: a turn that raced ahead of the greeting
	// still creates the one record via upsert below.

	plan := e.planFor(rec)

	if rec.Status.Terminal() {
		// Absorbing: the decision stands, but a late utterance still lands
		// in the transcript so no delivery is ever dropped.
		if utt := strings.TrimSpace(t.Utterance); utt != "" {
			_, err := e.store.Upsert(ctx, t.CallID, callstore.Update{
				CallerPhone:          t.CallerPhone,
				PaymentPlan:          e.cfg.OfferedPlan,
				Utterance:            utt,
				Intent:               rec.Intent,
				Status:               rec.Status,
				ReplyText:            rec.ReplyText,
				Confidence:           rec.Confidence,
				ConfirmationResponse: rec.ConfirmationResponse,
				RetryCount:           rec.RetryCount,
			})
			if err != nil {
				return Reply{}, fmt.Errorf("conversation: persist turn for call %s: %w", t.CallID, err)
			}
		}
		return RenderReply(rec.Status, plan, e.cfg.AmountOwed), nil
	}

	update := callstore.Update{
		CallerPhone: t.CallerPhone,
		PaymentPlan: e.cfg.OfferedPlan,
		Utterance:   strings.TrimSpace(t.Utterance),
	}

	var d Decision
	if update.Utterance == "" {
		// Silence/timeout closes the call.
		d = Decision{
			Intent:     callstore.IntentNoResponse,
			Status:     callstore.StatusNoResponse,
			RetryCount: rec.RetryCount,
			Reason:     "silence",
		}
	} else {
		res, cerr := e.classifier.Classify(ctx, classifier.Request{
			AmountOwed:   e.cfg.AmountOwed,
			OfferedPlan:  plan,
			Utterance:    update.Utterance,
			PriorContext: rec.Transcript,
		})
		if cerr != nil {
			// Fallback-as-data: an unavailable classifier is just an
			// unclear answer with zero confidence.
			logger.From(ctx).Warn("classifier unavailable, falling back to unclear",
				"call_id", t.CallID, "err", cerr)
			res = classifier.Result{Answer: classifier.AnswerUnclear, Confidence: 0}
		}

		d = Decide(DecisionInput{
			Answer:     res.Answer,
			Confidence: res.Confidence,
			RetryCount: rec.RetryCount,
			Threshold:  e.cfg.ConfidenceThreshold,
			MaxRetries: e.cfg.MaxClarifyRetries,
		})
		if cerr != nil {
			d.Reason = "classifier_unavailable"
		}
		update.Confidence = res.Confidence
		update.ConfirmationResponse = string(res.Answer)
	}

	update.Intent = d.Intent
	update.Status = d.Status
	update.RetryCount = d.RetryCount

	reply := RenderReply(d.Status, plan, e.cfg.AmountOwed)
	update.ReplyText = reply.Text

	if _, err := e.store.Upsert(ctx, t.CallID, update); err != nil {
		return Reply{}, fmt.Errorf("conversation: persist turn for call %s: %w", t.CallID, err)
	}

	e.logTurn(ctx, t.CallID, rec.Status, d)
	return reply, nil
}

func (e *Engine) planFor(rec callstore.CallRecord) string {
	if rec.PaymentPlan != "" {
		return rec.PaymentPlan
	}
	return e.cfg.OfferedPlan
}

func (e *Engine) logStart(ctx context.Context, callID string) {
	if e.audit == nil {
		return
	}
	if err := e.audit.LogCallStarted(ctx, callID, string(callstore.StatusAwaitingResponse)); err != nil {
		logger.From(ctx).Warn("audit append failed", "call_id", callID, "err", err)
	}
}

func (e *Engine) logTurn(ctx context.Context, callID string, from callstore.Status, d Decision) {
	if e.audit == nil {
		return
	}
	if err := e.audit.LogTurnDecision(ctx, callID, string(from), string(d.Status), d.Reason); err != nil {
		logger.From(ctx).Warn("audit append failed", "call_id", callID, "err", err)
	}
}
