// router/router.go
package router

import (
	"github.com/dalemusser/routenav/config"
	"github.com/dalemusser/routenav/logging"
	"github.com/dalemusser/routenav/metrics"
	"github.com/dalemusser/routenav/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// New creates a chi.Router with the standard middleware stack:
// RequestID, RealIP, Recoverer, body size limit, metrics, request logging,
// security headers, CORS and compression (when enabled) and JSON NotFound /
// MethodNotAllowed handlers.
// Views and API routes are mounted by the caller.
func New(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Recoverer(logger))
	r.Use(middleware.LimitBodySize(coreCfg.MaxRequestBodyBytes))
	r.Use(metrics.HTTPMetrics)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.CompressFromConfig(coreCfg))

	r.NotFound(middleware.NotFoundHandler(logger))
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler(logger))

	return r
}
