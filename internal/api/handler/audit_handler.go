package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tuanmng/pa-intake-be/internal/api/dto"
)

// List handles GET /v1/audit?request_id=...
// Returns the audit trail for a request, newest first
func (h *AuditHandler) List(c *gin.Context) {
	requestID := c.Query("request_id")

	h.logger.Info("ListAuditEvents called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("request_id", requestID),
	)

	if requestID == "" {
		c.JSON(http.StatusOK, []dto.AuditEventDTO{})
		return
	}

	events, err := h.audit.ListByRequest(c.Request.Context(), requestID)
	if err != nil {
		h.logger.Error("Failed to list audit events",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuditEventDTOs(events))
}
