package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It MUST be append-only; no Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Service records conversation transitions for internal ops.
// Callers should treat appends as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CallID == "" || e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogCallStarted records the creation of a call record at the greeting.
func (s *Service) LogCallStarted(ctx context.Context, callID, status string) error {
	return s.Append(ctx, Event{
		Type:     EventTypeCallStarted,
		CallID:   callID,
		ToStatus: status,
	})
}

// LogTurnDecision records one state machine edge for a call.
func (s *Service) LogTurnDecision(ctx context.Context, callID, fromStatus, toStatus, reason string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeTurnDecision,
		CallID:     callID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Reason:     reason,
	})
}
