package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tuanmng/pa-intake-be/internal/api/domain"
	"github.com/tuanmng/pa-intake-be/internal/api/model"
	"github.com/tuanmng/pa-intake-be/internal/api/storage"
)

// Store is the transactional store the lifecycle manager runs against.
type Store interface {
	CreateRequest(ctx context.Context, requestID string) error
	RequestExists(ctx context.Context, requestID string) (bool, error)
	GetRequestView(ctx context.Context, requestID string) (*model.RequestView, error)
	WithTx(ctx context.Context, fn func(tx storage.Tx) error) error
}

// AuditWriter appends audit events after the transactional phase.
type AuditWriter interface {
	Append(ctx context.Context, requestID *string, actor, action string, metadata map[string]any) error
}

// Publisher hands a created job to the work queue.
type Publisher interface {
	PublishJob(ctx context.Context, desc model.JobDescriptor) error
}

// Service orchestrates the PA request and document job lifecycle. For every
// upload the ordering is: transaction commit, then audit append, then queue
// publish. The three are never reordered and the last two never run inside
// the transaction.
type Service struct {
	store  Store
	audit  AuditWriter
	queue  Publisher
	logger *slog.Logger
}

func NewService(store Store, audit AuditWriter, queue Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		audit:  audit,
		queue:  queue,
		logger: logger,
	}
}

// UploadParams carries already-authenticated, primitive inputs for a
// document submission.
type UploadParams struct {
	RequestID      string
	IdempotencyKey string
	Text           string
	Actor          string
}

// UploadResult identifies the job backing a submission.
type UploadResult struct {
	JobID     string
	RequestID string
}

// CreateRequest inserts a new PA request in pending status and records a
// PA_REQUEST_CREATED audit event. The audit failure does not undo the
// insert but is surfaced to the caller.
func (s *Service) CreateRequest(ctx context.Context, actor string) (string, error) {
	requestID := uuid.New().String()

	if err := s.store.CreateRequest(ctx, requestID); err != nil {
		return "", err
	}

	if err := s.audit.Append(ctx, &requestID, actor, domain.ActionRequestCreated, nil); err != nil {
		return "", fmt.Errorf("pa request %s created but audit append failed: %w", requestID, err)
	}

	s.logger.Info("PA request created",
		slog.String("request_id", requestID),
	)

	return requestID, nil
}

// UploadDocument attaches a document to a PA request with exactly-once job
// creation per (requestID, idempotencyKey) pair. Retried or concurrent
// duplicate submissions return the job id created by the winner without a
// second audit event or publish.
func (s *Service) UploadDocument(ctx context.Context, params UploadParams) (*UploadResult, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(params.IdempotencyKey) == "" {
		return nil, fmt.Errorf("%w: Idempotency-Key header is required", domain.ErrInvalidInput)
	}

	exists, err := s.store.RequestExists(ctx, params.RequestID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrRequestNotFound
	}

	job, replay, err := s.createJobOnce(ctx, params)
	if err != nil {
		s.logger.Error("Failed to upload document",
			slog.String("request_id", params.RequestID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	result := &UploadResult{JobID: job.JobID, RequestID: params.RequestID}

	if replay {
		s.logger.Info("Idempotent replay, reusing existing job",
			slog.String("request_id", params.RequestID),
			slog.String("job_id", job.JobID),
		)
		return result, nil
	}

	// The job row is durable from here on. Audit and publish must not be
	// aborted by caller cancellation and their failure must not undo the
	// job, so they run on a detached context and are only logged.
	detached := context.WithoutCancel(ctx)

	if err := s.audit.Append(detached, &params.RequestID, params.Actor, domain.ActionDocumentUploaded, map[string]any{
		"job_id": job.JobID,
	}); err != nil {
		s.logger.Error("Post-commit audit append failed, job is durable",
			slog.String("request_id", params.RequestID),
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.queue.PublishJob(detached, model.JobDescriptor{
		JobID:     job.JobID,
		RequestID: params.RequestID,
		TraceID:   job.TraceID,
	}); err != nil {
		s.logger.Error("Post-commit queue publish failed, job is durable but not enqueued",
			slog.String("request_id", params.RequestID),
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
	}

	return result, nil
}

// createJobOnce runs the atomic lookup+insert phase. It reports replay=true
// when a job for the pair already existed. A unique-violation from two
// submissions racing past the row-lock check (no row to lock yet) triggers
// one retry, which then observes the winner's row.
func (s *Service) createJobOnce(ctx context.Context, params UploadParams) (*model.DocumentJob, bool, error) {
	var (
		job    *model.DocumentJob
		replay bool
	)

	attempt := func() error {
		return s.store.WithTx(ctx, func(tx storage.Tx) error {
			exists, err := tx.RequestExists(ctx, params.RequestID)
			if err != nil {
				return err
			}
			if !exists {
				return domain.ErrRequestNotFound
			}

			existing, err := tx.LockJobForKey(ctx, params.RequestID, params.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				job = existing
				replay = true
				return nil
			}

			created := &model.DocumentJob{
				JobID:          uuid.New().String(),
				RequestID:      params.RequestID,
				IdempotencyKey: params.IdempotencyKey,
				Status:         domain.JobStatusQueued,
				Attempts:       0,
				TraceID:        uuid.New().String(),
			}

			if err := tx.InsertJob(ctx, created); err != nil {
				return err
			}

			if err := tx.InsertDocument(ctx, &model.Document{
				JobID:     created.JobID,
				RequestID: params.RequestID,
				Content:   params.Text,
			}); err != nil {
				return err
			}

			job = created
			replay = false
			return nil
		})
	}

	err := attempt()
	if storage.IsUniqueViolation(err) {
		s.logger.Warn("Concurrent duplicate submission lost insert race, re-reading",
			slog.String("request_id", params.RequestID),
		)
		err = attempt()
	}
	if err != nil {
		return nil, false, err
	}

	return job, replay, nil
}

// GetRequest reads the request joined with its latest evidence pack.
func (s *Service) GetRequest(ctx context.Context, requestID string) (*model.RequestView, error) {
	return s.store.GetRequestView(ctx, requestID)
}
