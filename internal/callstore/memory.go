package callstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and early development.
// It applies the same merge rules as the Postgres implementation.

type MemoryStore struct {
	mu      sync.Mutex
	records map[string]CallRecord

	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]CallRecord{}, clock: time.Now}
}

func (s *MemoryStore) Upsert(ctx context.Context, callID string, u Update) (CallRecord, error) {
	if callID == "" {
		return CallRecord{}, errors.New("callstore: call_id required")
	}
	now := s.clock().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[callID]
	if !ok {
		rec = CallRecord{CallID: callID, CreatedAt: now}
	}

	if rec.CallerPhone == "" {
		rec.CallerPhone = u.CallerPhone
	}
	if rec.PaymentPlan == "" {
		rec.PaymentPlan = u.PaymentPlan
	}
	if u.Utterance != "" {
		if rec.Transcript == "" {
			rec.Transcript = u.Utterance
		} else {
			rec.Transcript += TranscriptSeparator + u.Utterance
		}
	}
	rec.Intent = u.Intent
	rec.Status = u.Status
	rec.ReplyText = u.ReplyText
	rec.Confidence = u.Confidence
	rec.ConfirmationResponse = u.ConfirmationResponse
	if u.RetryCount > rec.RetryCount {
		rec.RetryCount = u.RetryCount
	}
	rec.UpdatedAt = now

	s.records[callID] = rec
	return rec, nil
}

func (s *MemoryStore) Get(ctx context.Context, callID string) (CallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[callID]
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]CallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CallRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CallID > out[j].CallID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
