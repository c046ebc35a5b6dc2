package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"short", "home", 10, "home"},
		{"exact", "home", 4, "home"},
		{"cut ascii", "dashboard", 4, "dash"},
		{"no split rune", "aé", 2, "a"},
		{"zero", "home", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateUTF8(tt.s, tt.max))
		})
	}
}

func TestObserveNavigation(t *testing.T) {
	before := testutil.ToFloat64(navigations.WithLabelValues("metrics_test_view", "redirected"))
	ObserveNavigation("metrics_test_view", "redirected")
	ObserveNavigation("metrics_test_view", "redirected")
	after := testutil.ToFloat64(navigations.WithLabelValues("metrics_test_view", "redirected"))
	assert.Equal(t, before+2, after)

	long := strings.Repeat("v", 100)
	ObserveNavigation(long, "unknown_view")
	assert.Equal(t, float64(1), testutil.ToFloat64(navigations.WithLabelValues(long[:maxViewLabelLength], "unknown_view")))
}

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetrics)
	r.Get("/metrics-test/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics-test/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(reqDuration, "http_request_duration_seconds"))
}

func TestRegisterDefaultTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		RegisterDefault(nil)
		RegisterDefault(nil)
	})
}
