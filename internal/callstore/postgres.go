package callstore

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStore persists call records via database/sql (pgx stdlib driver).
//
// NOTE: This store assumes the following table exists:
//
//	CREATE TABLE call_records (
//	    call_id               TEXT PRIMARY KEY,
//	    caller_phone          TEXT NOT NULL DEFAULT '',
//	    transcript            TEXT NOT NULL DEFAULT '',
//	    intent                TEXT NOT NULL DEFAULT '',
//	    payment_plan          TEXT NOT NULL DEFAULT '',
//	    reply_text            TEXT NOT NULL DEFAULT '',
//	    confidence            INT  NOT NULL DEFAULT 0,
//	    status                TEXT NOT NULL DEFAULT 'awaiting_response',
//	    confirmation_response TEXT NOT NULL DEFAULT '',
//	    retry_count           INT  NOT NULL DEFAULT 0,
//	    created_at            TIMESTAMPTZ NOT NULL,
//	    updated_at            TIMESTAMPTZ NOT NULL
//	);
//
// The PRIMARY KEY on call_id plus the single-statement ON CONFLICT upsert is
// what enforces the at-most-one-row invariant under concurrent deliveries.

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

func (s *PostgresStore) Upsert(ctx context.Context, callID string, u Update) (CallRecord, error) {
	if callID == "" {
		return CallRecord{}, errors.New("callstore: call_id required")
	}
	now := s.clock().UTC()

	// Merge rules in SQL so both sides of a duplicate delivery land:
	// transcript concatenates, phone/plan are set-once, retry_count only grows.
	const q = `
INSERT INTO call_records (
  call_id, caller_phone, transcript, intent, payment_plan, reply_text,
  confidence, status, confirmation_response, retry_count, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
ON CONFLICT (call_id) DO UPDATE SET
  caller_phone = CASE WHEN call_records.caller_phone = '' THEN EXCLUDED.caller_phone
                      ELSE call_records.caller_phone END,
  payment_plan = CASE WHEN call_records.payment_plan = '' THEN EXCLUDED.payment_plan
                      ELSE call_records.payment_plan END,
  transcript = CASE WHEN EXCLUDED.transcript = '' THEN call_records.transcript
                    WHEN call_records.transcript = '' THEN EXCLUDED.transcript
                    ELSE call_records.transcript || $12 || EXCLUDED.transcript END,
  intent = EXCLUDED.intent,
  reply_text = EXCLUDED.reply_text,
  confidence = EXCLUDED.confidence,
  status = EXCLUDED.status,
  confirmation_response = EXCLUDED.confirmation_response,
  retry_count = GREATEST(call_records.retry_count, EXCLUDED.retry_count),
  updated_at = EXCLUDED.updated_at
RETURNING call_id, caller_phone, transcript, intent, payment_plan, reply_text,
          confidence, status, confirmation_response, retry_count, created_at, updated_at
`
	var rec CallRecord
	err := s.db.QueryRowContext(ctx, q,
		callID,
		u.CallerPhone,
		u.Utterance,
		string(u.Intent),
		u.PaymentPlan,
		u.ReplyText,
		u.Confidence,
		string(u.Status),
		u.ConfirmationResponse,
		u.RetryCount,
		now,
		TranscriptSeparator,
	).Scan(
		&rec.CallID,
		&rec.CallerPhone,
		&rec.Transcript,
		&rec.Intent,
		&rec.PaymentPlan,
		&rec.ReplyText,
		&rec.Confidence,
		&rec.Status,
		&rec.ConfirmationResponse,
		&rec.RetryCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return CallRecord{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, callID string) (CallRecord, error) {
	const q = `
SELECT call_id, caller_phone, transcript, intent, payment_plan, reply_text,
       confidence, status, confirmation_response, retry_count, created_at, updated_at
FROM call_records
WHERE call_id = $1
`
	var rec CallRecord
	err := s.db.QueryRowContext(ctx, q, callID).Scan(
		&rec.CallID,
		&rec.CallerPhone,
		&rec.Transcript,
		&rec.Intent,
		&rec.PaymentPlan,
		&rec.ReplyText,
		&rec.Confidence,
		&rec.Status,
		&rec.ConfirmationResponse,
		&rec.RetryCount,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallRecord{}, ErrNotFound
		}
		return CallRecord{}, err
	}
	return rec, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]CallRecord, error) {
	const q = `
SELECT call_id, caller_phone, transcript, intent, payment_plan, reply_text,
       confidence, status, confirmation_response, retry_count, created_at, updated_at
FROM call_records
ORDER BY created_at DESC, call_id DESC
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0)
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(
			&rec.CallID,
			&rec.CallerPhone,
			&rec.Transcript,
			&rec.Intent,
			&rec.PaymentPlan,
			&rec.ReplyText,
			&rec.Confidence,
			&rec.Status,
			&rec.ConfirmationResponse,
			&rec.RetryCount,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
