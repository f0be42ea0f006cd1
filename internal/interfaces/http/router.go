// Package http wires the gin route tree and the API server lifecycle.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/prometheus"
	"github.com/wirkancil/markintel/internal/interfaces/http/handlers"
	"github.com/wirkancil/markintel/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.  Nil handlers leave their routes unregistered,
// which keeps tests small and lets the worker binary reuse the probes.
type RouterConfig struct {
	AnalysisHandler *handlers.AnalysisHandler
	DocumentHandler *handlers.DocumentHandler
	ReportHandler   *handlers.ReportHandler
	StatsHandler    *handlers.StatsHandler
	HealthHandler   *handlers.HealthHandler

	CORS    *middleware.CORSConfig
	Logging *middleware.LoggingConfig

	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter builds the full gin engine: global middleware, public probes,
// the metrics endpoint and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.Logging != nil {
			logCfg = *cfg.Logging
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}

	api := r.Group("/api/v1")

	if h := cfg.AnalysisHandler; h != nil {
		api.POST("/analysis/similarity", h.Analyze)
		api.GET("/thresholds", h.GetThresholds)
		api.PUT("/thresholds", h.UpdateThresholds)
	}
	if h := cfg.DocumentHandler; h != nil {
		api.POST("/documents", h.Upload)
		api.DELETE("/documents/:documentID", h.Delete)
		api.GET("/documents/:documentID/records", h.Records)
	}
	if h := cfg.ReportHandler; h != nil {
		api.POST("/reports/similarity", h.Generate)
	}
	if h := cfg.StatsHandler; h != nil {
		api.GET("/stats", h.Stats)
	}

	return r
}
