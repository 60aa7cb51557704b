package dto

import (
	"encoding/json"
	"time"

	"github.com/tuanmng/pa-intake-be/internal/api/model"
)

type CreateRequestResponse struct {
	RequestID string `json:"request_id"`
}

type UploadDocumentRequest struct {
	Text string `json:"text" binding:"required"`
}

type UploadDocumentResponse struct {
	JobID     string `json:"job_id"`
	RequestID string `json:"request_id"`
}

type EvidencePackDTO struct {
	ID            string          `json:"id"`
	Decision      string          `json:"decision"`
	Explanation   *string         `json:"explanation"`
	Metadata      json.RawMessage `json:"metadata"`
	Evidence      json.RawMessage `json:"evidence"`
	Sources       json.RawMessage `json:"sources"`
	MissingFields []string        `json:"missing_fields"`
}

type GetRequestResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	EvidencePack *EvidencePackDTO `json:"evidence_pack"`
}

type AuditEventDTO struct {
	RequestID *string         `json:"request_id"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt string          `json:"created_at"`
}

// NewGetRequestResponse shapes the joined request view. The evidence pack
// projection is present only when the worker has produced one.
func NewGetRequestResponse(view *model.RequestView) GetRequestResponse {
	resp := GetRequestResponse{
		ID:     view.ID,
		Status: view.Status,
	}

	if view.PackID.Valid {
		pack := &EvidencePackDTO{
			ID:            view.PackID.String,
			Decision:      view.Decision.String,
			Metadata:      rawOrNull(view.Metadata),
			Evidence:      rawOrNull(view.Evidence),
			Sources:       rawOrNull(view.Sources),
			MissingFields: view.MissingFields,
		}
		if view.Explanation.Valid {
			explanation := view.Explanation.String
			pack.Explanation = &explanation
		}
		resp.EvidencePack = pack
	}

	return resp
}

// NewAuditEventDTOs shapes audit rows for the API, preserving storage order
// (newest first).
func NewAuditEventDTOs(events []model.AuditEvent) []AuditEventDTO {
	out := make([]AuditEventDTO, len(events))
	for i, ev := range events {
		dto := AuditEventDTO{
			Actor:     ev.Actor,
			Action:    ev.Action,
			Metadata:  rawOrNull(ev.Metadata),
			CreatedAt: ev.CreatedAt.Format(time.RFC3339),
		}
		if ev.RequestID.Valid {
			requestID := ev.RequestID.String
			dto.RequestID = &requestID
		}
		out[i] = dto
	}
	return out
}

func rawOrNull(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}
