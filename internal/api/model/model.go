package model

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// PaRequest is a row in core.pa_requests.
type PaRequest struct {
	ID           string         `db:"id"`
	Status       string         `db:"status"`
	LatestPackID sql.NullString `db:"latest_pack_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// DocumentJob is a row in core.document_jobs. Exactly one row exists per
// (request_id, idempotency_key) pair.
type DocumentJob struct {
	JobID          string    `db:"job_id"`
	RequestID      string    `db:"request_id"`
	IdempotencyKey string    `db:"idempotency_key"`
	Status         string    `db:"status"`
	Attempts       int       `db:"attempts"`
	TraceID        string    `db:"trace_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Document is a row in phi.documents, linked 1:1 to a DocumentJob and
// written in the same transaction. Content is sensitive and must never be
// logged or returned in error responses.
type Document struct {
	JobID     string    `db:"job_id"`
	RequestID string    `db:"request_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// AuditEvent is a row in core.audit_events; append-only.
type AuditEvent struct {
	RequestID sql.NullString `db:"request_id"`
	Actor     string         `db:"actor"`
	Action    string         `db:"action"`
	Metadata  []byte         `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// RequestView is the projection of a PA request joined with its latest
// evidence pack (if any) and that pack's detail record. Pack columns are
// NULL when no pack has been produced yet.
type RequestView struct {
	ID            string         `db:"id"`
	Status        string         `db:"status"`
	PackID        sql.NullString `db:"pack_id"`
	Decision      sql.NullString `db:"decision"`
	Explanation   sql.NullString `db:"explanation"`
	Metadata      []byte         `db:"metadata"`
	Evidence      []byte         `db:"evidence"`
	Sources       []byte         `db:"sources"`
	MissingFields pq.StringArray `db:"missing_fields"`
}

// JobDescriptor is the message published to the work queue when a document
// job is created.
type JobDescriptor struct {
	JobID     string `json:"job_id"`
	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`
}
