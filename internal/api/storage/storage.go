package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/tuanmng/pa-intake-be/internal/api/domain"
	"github.com/tuanmng/pa-intake-be/internal/api/model"
	"github.com/tuanmng/pa-intake-be/shared/postgresql"
)

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// Tx is the transactional surface used by the upload pipeline. All calls
// run on one connection with manual commit/rollback controlled by WithTx.
type Tx interface {
	// RequestExists re-verifies the PA request inside the transaction,
	// defending against a deletion racing the upload.
	RequestExists(ctx context.Context, requestID string) (bool, error)

	// LockJobForKey looks up the job for (requestID, idempotencyKey) and
	// takes an exclusive row lock on any match so a concurrent identical
	// submission serializes behind it. Returns (nil, nil) when no row exists.
	LockJobForKey(ctx context.Context, requestID, idempotencyKey string) (*model.DocumentJob, error)

	// InsertJob inserts a new document job row.
	InsertJob(ctx context.Context, job *model.DocumentJob) error

	// InsertDocument inserts the sensitive payload row linked to a job.
	InsertDocument(ctx context.Context, doc *model.Document) error
}

type Storage struct {
	db *sqlx.DB
	pg *postgresql.Client
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
		pg: pg,
	}
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back on error or panic; the connection is released
// on every exit path.
func (s *Storage) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pg.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. The upload pipeline uses this to fall back to a re-read when
// two concurrent submissions race past the row-lock check.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateRequest inserts a new PA request in pending status.
func (s *Storage) CreateRequest(ctx context.Context, requestID string) error {
	query := `
		INSERT INTO core.pa_requests (id, status)
		VALUES ($1, $2)
	`

	if _, err := s.db.ExecContext(ctx, query, requestID, domain.RequestStatusPending); err != nil {
		return fmt.Errorf("failed to create pa request: %w", err)
	}

	return nil
}

// RequestExists checks for the PA request outside any transaction.
func (s *Storage) RequestExists(ctx context.Context, requestID string) (bool, error) {
	var id string
	query := `SELECT id FROM core.pa_requests WHERE id = $1`

	err := s.db.GetContext(ctx, &id, query, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check pa request: %w", err)
	}

	return true, nil
}

// GetRequestView reads the request joined with its latest evidence pack and
// that pack's detail record. Returns domain.ErrRequestNotFound when the
// request id does not exist.
func (s *Storage) GetRequestView(ctx context.Context, requestID string) (*model.RequestView, error) {
	query := `
		SELECT r.id,
		       r.status,
		       p.id AS pack_id,
		       p.decision,
		       p.explanation,
		       p.metadata,
		       ed.evidence,
		       ed.sources,
		       ed.missing_fields
		FROM core.pa_requests r
		LEFT JOIN core.evidence_packs p ON r.latest_pack_id = p.id
		LEFT JOIN phi.evidence_details ed ON ed.pack_id = p.id
		WHERE r.id = $1
	`

	var view model.RequestView
	err := s.db.GetContext(ctx, &view, query, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get pa request view: %w", err)
	}

	return &view, nil
}

// sqlTx implements Tx over a live sqlx transaction.
type sqlTx struct {
	tx *sqlx.Tx
}

func (t *sqlTx) RequestExists(ctx context.Context, requestID string) (bool, error) {
	var id string
	query := `SELECT id FROM core.pa_requests WHERE id = $1`

	err := t.tx.GetContext(ctx, &id, query, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check pa request in tx: %w", err)
	}

	return true, nil
}

func (t *sqlTx) LockJobForKey(ctx context.Context, requestID, idempotencyKey string) (*model.DocumentJob, error) {
	query := `
		SELECT job_id, request_id, idempotency_key, status, attempts, trace_id, created_at, updated_at
		FROM core.document_jobs
		WHERE request_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`

	var job model.DocumentJob
	err := t.tx.GetContext(ctx, &job, query, requestID, idempotencyKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock document job: %w", err)
	}

	return &job, nil
}

func (t *sqlTx) InsertJob(ctx context.Context, job *model.DocumentJob) error {
	query := `
		INSERT INTO core.document_jobs (
			job_id, request_id, idempotency_key, status, attempts, trace_id
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := t.tx.ExecContext(
		ctx,
		query,
		job.JobID,
		job.RequestID,
		job.IdempotencyKey,
		job.Status,
		job.Attempts,
		job.TraceID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document job: %w", err)
	}

	return nil
}

func (t *sqlTx) InsertDocument(ctx context.Context, doc *model.Document) error {
	query := `
		INSERT INTO phi.documents (job_id, request_id, content)
		VALUES ($1, $2, $3)
	`

	_, err := t.tx.ExecContext(ctx, query, doc.JobID, doc.RequestID, doc.Content)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}
