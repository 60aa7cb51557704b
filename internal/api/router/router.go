package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tuanmng/pa-intake-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, apiKey string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "pa-intake-service",
		})
	})

	requestHandler := handler.NewRequestHandler(deps)
	auditHandler := handler.NewAuditHandler(deps)

	// Versioned routes, all behind the api-key check
	v1 := r.Group("/v1")
	v1.Use(APIKeyMiddleware(apiKey))
	{
		requests := v1.Group("/pa-requests")
		{
			// POST /v1/pa-requests - Create a new PA request
			requests.POST("", requestHandler.CreateRequest)

			// POST /v1/pa-requests/:request_id/documents - Attach a document
			requests.POST("/:request_id/documents", requestHandler.UploadDocument)

			// GET /v1/pa-requests/:request_id - Request view with latest evidence pack
			requests.GET("/:request_id", requestHandler.GetRequest)
		}

		// GET /v1/audit?request_id=... - Audit trail, newest first
		v1.GET("/audit", auditHandler.List)
	}

	return r
}
