// httputil/json.go
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var encodeLogger atomic.Pointer[zap.Logger]

// SetLogger sets the logger used to report encoding failures that happen
// after the status line has been sent. Call once at startup.
func SetLogger(logger *zap.Logger) {
	encodeLogger.Store(logger)
}

// WriteJSON writes v as JSON with the given status. Status codes outside
// 100-599 are sent as 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		if l := encodeLogger.Load(); l != nil {
			l.Error("json encoding failed after headers sent",
				zap.String("type", fmt.Sprintf("%T", v)), zap.Error(err))
		}
	}
}

// JSONError writes an ErrorResponse with code and message.
func JSONError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// BindJSON decodes the request body into v, rejecting unknown fields and
// trailing data. Returned errors are safe to show to clients.
//
//	var req DescriptorRequest
//	if err := httputil.BindJSON(r, &req); err != nil {
//	    httputil.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
//	    return
//	}
func BindJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return parseJSONError(err)
	}
	if dec.More() {
		return errors.New("request body contains multiple JSON values")
	}
	return nil
}

// parseJSONError converts decoder errors into client-facing messages.
func parseJSONError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return errors.New("request body is empty")
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Errorf("invalid value for field %q: expected %s", typeErr.Field, typeErr.Type.String())
	case errors.As(err, &maxErr):
		return errors.New("request body too large")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fmt.Errorf("unknown field %q", field)
	}
	return errors.New("invalid JSON in request body")
}
