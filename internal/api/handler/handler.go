package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tuanmng/pa-intake-be/internal/api/audit"
	"github.com/tuanmng/pa-intake-be/internal/api/domain"
	"github.com/tuanmng/pa-intake-be/internal/api/service"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Service *service.Service
	Audit   *audit.Writer
}

// RequestHandler handles PA request HTTP endpoints
type RequestHandler struct {
	logger  *slog.Logger
	service *service.Service
}

// NewRequestHandler creates a new RequestHandler instance
func NewRequestHandler(deps *Dependencies) *RequestHandler {
	return &RequestHandler{
		logger:  deps.Logger,
		service: deps.Service,
	}
}

// AuditHandler handles audit trail HTTP endpoints
type AuditHandler struct {
	logger *slog.Logger
	audit  *audit.Writer
}

// NewAuditHandler creates a new AuditHandler instance
func NewAuditHandler(deps *Dependencies) *AuditHandler {
	return &AuditHandler{
		logger: deps.Logger,
		audit:  deps.Audit,
	}
}

// actorFrom returns the caller identity set by the api-key middleware.
func actorFrom(c *gin.Context) string {
	if actor, ok := c.Get("actor"); ok {
		if s, ok := actor.(string); ok {
			return s
		}
	}
	return "unknown"
}

// respondError maps domain errors to HTTP statuses. Anything outside the
// client-error taxonomy becomes a generic 500 with no internal detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, domain.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "request not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	}
}
