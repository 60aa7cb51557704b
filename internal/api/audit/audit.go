package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tuanmng/pa-intake-be/internal/api/model"
	"github.com/tuanmng/pa-intake-be/shared/postgresql"
)

// Writer appends immutable audit events. No update or delete is ever issued
// against core.audit_events; ordering between events for the same request
// is by write time.
type Writer struct {
	db *sqlx.DB
}

func NewWriter(pg *postgresql.Client) *Writer {
	return &Writer{
		db: pg.GetDB(),
	}
}

// Append writes one audit event. requestID may be nil for events not tied
// to a request. The write is durable once Append returns nil.
func (w *Writer) Append(ctx context.Context, requestID *string, actor, action string, metadata map[string]any) error {
	var metadataJSON []byte
	if metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO core.audit_events (request_id, actor, action, metadata)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := w.db.ExecContext(ctx, query, requestID, actor, action, metadataJSON); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	return nil
}

// ListByRequest returns the audit trail for a request, newest first.
func (w *Writer) ListByRequest(ctx context.Context, requestID string) ([]model.AuditEvent, error) {
	query := `
		SELECT request_id, actor, action, metadata, created_at
		FROM core.audit_events
		WHERE request_id = $1
		ORDER BY created_at DESC
	`

	var events []model.AuditEvent
	if err := w.db.SelectContext(ctx, &events, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	return events, nil
}
