// Package http assembles the gin engine and server of the classification API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cnsipo-attrs/internal/interfaces/http/handlers"
	"github.com/turtacn/cnsipo-attrs/internal/interfaces/http/middleware"
)

// APIPrefix is the path prefix of the versioned API.
const APIPrefix = "/api/v1"

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the route tree.
type RouterConfig struct {
	// Handlers
	ClassifyHandler *handlers.ClassifyHandler
	HealthHandler   *handlers.HealthHandler

	// Infrastructure
	Logger         logging.Logger
	Metrics        *prometheus.AppMetrics
	MetricsHandler http.Handler
	Logging        *middleware.LoggingConfig
}

// NewRouter builds the gin engine: request ID, recovery, logging and metrics
// middleware, public health endpoints, /metrics and the API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogging(logger, logCfg),
		middleware.Metrics(cfg.Metrics),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group(APIPrefix)
	if cfg.ClassifyHandler != nil {
		cfg.ClassifyHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code:      "COMMON_005",
			Message:   "resource not found",
			RequestID: middleware.GetRequestID(c),
		})
	})
	return r
}

//Personal.AI order the ending
