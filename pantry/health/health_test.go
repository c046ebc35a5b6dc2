package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	resp, ok := Run(context.Background(), nil)
	assert.True(t, ok)
	assert.Equal(t, Response{Status: "ok"}, resp)

	resp, ok = Run(context.Background(), map[string]Check{
		"routes": func(context.Context) error { return nil },
		"nil":    nil,
		"broken": func(context.Context) error { return errors.New("no views") },
	})
	assert.False(t, ok)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, map[string]string{"routes": "ok", "nil": "ok", "broken": "error: no views"}, resp.Checks)
}

func TestMount(t *testing.T) {
	r := chi.NewRouter()
	Mount(r, map[string]Check{"broken": func(context.Context) error { return errors.New("down") }}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"error","checks":{"broken":"error: down"}}`, rec.Body.String())
}
