package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusNotFound, "unknown_view", `no view named "nope"`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, ErrorResponse{Error: "unknown_view", Message: `no view named "nope"`}, got)
}

func TestWriteJSONClampsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 42, map[string]string{"status": "ok"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBindJSON(t *testing.T) {
	type payload struct {
		View string `json:"view"`
		Keep bool   `json:"keep"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"view":"home","keep":true}`, ""},
		{"empty", ``, "request body is empty"},
		{"syntax", `{"view":`, "invalid JSON in request body"},
		{"bad type", `{"view":7}`, `invalid value for field "view"`},
		{"unknown field", `{"view":"home","extra":1}`, `unknown field "extra"`},
		{"trailing value", `{"view":"home"} {"view":"x"}`, "multiple JSON values"},
		{"malformed", `{"view" "home"}`, "malformed JSON at position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/descriptor", strings.NewReader(tt.body))
			var p payload
			err := BindJSON(r, &p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, payload{View: "home", Keep: true}, p)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
