package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manisht21/file-sender/internal/config"
	"github.com/manisht21/file-sender/internal/ingest"
	"github.com/manisht21/file-sender/internal/logger"
	"github.com/manisht21/file-sender/internal/metrics"
	"github.com/manisht21/file-sender/internal/storage"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config        config.Config
	ObjectStore   storage.ObjectStore
	IngestService *ingest.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
// CORS runs first so every response, panics included, carries the
// cross-origin headers; the recovery handler keeps faults inside the
// standard JSON error shape.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(CORS())
	router.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(logger.Middleware())
	router.Use(gin.Logger())
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/api")
	if deps.IngestService != nil {
		ingest.RegisterRoutes(api, deps.IngestService)
	}

	return router
}
