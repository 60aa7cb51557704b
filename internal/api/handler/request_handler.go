package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tuanmng/pa-intake-be/internal/api/dto"
	"github.com/tuanmng/pa-intake-be/internal/api/service"
)

// CreateRequest handles POST /v1/pa-requests
// Creates a new PA request in pending status
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	h.logger.Info("CreateRequest called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	requestID, err := h.service.CreateRequest(c.Request.Context(), actorFrom(c))
	if err != nil {
		h.logger.Error("Failed to create PA request", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateRequestResponse{
		RequestID: requestID,
	})
}

// UploadDocument handles POST /v1/pa-requests/:request_id/documents
// Attaches a document to a PA request; retries carrying the same
// Idempotency-Key header are answered with the original job id.
func (h *RequestHandler) UploadDocument(c *gin.Context) {
	requestID := c.Param("request_id")
	idempotencyKey := c.GetHeader("Idempotency-Key")

	h.logger.Info("UploadDocument called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("request_id", requestID),
	)

	var req dto.UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "text is required",
		})
		return
	}

	result, err := h.service.UploadDocument(c.Request.Context(), service.UploadParams{
		RequestID:      requestID,
		IdempotencyKey: idempotencyKey,
		Text:           req.Text,
		Actor:          actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadDocumentResponse{
		JobID:     result.JobID,
		RequestID: result.RequestID,
	})
}

// GetRequest handles GET /v1/pa-requests/:request_id
// Returns the request with its latest evidence pack, if one exists
func (h *RequestHandler) GetRequest(c *gin.Context) {
	requestID := c.Param("request_id")

	h.logger.Info("GetRequest called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("request_id", requestID),
	)

	view, err := h.service.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGetRequestResponse(view))
}
