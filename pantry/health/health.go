// pantry/health/health.go
package health

import (
	"context"
	"net/http"
	"sort"

	"github.com/dalemusser/routenav/httputil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Check probes one dependency and returns nil when it is healthy.
type Check func(ctx context.Context) error

// Response is the body served by Handler.
type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Run executes checks in name order and reports whether all passed.
// A nil check counts as passing.
func Run(ctx context.Context, checks map[string]Check) (Response, bool) {
	if len(checks) == 0 {
		return Response{Status: "ok"}, true
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := Response{Status: "ok", Checks: make(map[string]string, len(checks))}
	for _, name := range names {
		resp.Checks[name] = "ok"
		if checks[name] == nil {
			continue
		}
		if err := checks[name](ctx); err != nil {
			resp.Status = "error"
			resp.Checks[name] = "error: " + err.Error()
		}
	}
	return resp, resp.Status == "ok"
}

// Handler serves the check results as JSON: 200 when every check passes,
// 503 otherwise. With no checks it is a plain liveness probe.
func Handler(checks map[string]Check, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, ok := Run(r.Context(), checks)
		if !ok {
			logger.Warn("health check failed", zap.Any("checks", resp.Checks))
			httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	})
}

// Mount serves Handler at GET /health.
func Mount(r chi.Router, checks map[string]Check, logger *zap.Logger) {
	r.Method(http.MethodGet, "/health", Handler(checks, logger))
}
