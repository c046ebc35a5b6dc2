// middleware/security.go
package middleware

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/routenav/config"
)

// SecurityHeadersFromConfig sets nosniff, frame-deny and Referrer-Policy on
// every response, plus Strict-Transport-Security on TLS requests. It is a
// no-op when coreCfg is nil or security_headers is false.
//
// Navigation redirects carry the state query in their Location, so the
// referrer policy defaults to "no-referrer".
func SecurityHeadersFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.Security.SecurityHeaders {
		return func(next http.Handler) http.Handler { return next }
	}
	sec := coreCfg.Security
	var hsts string
	if sec.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(sec.HSTSMaxAge) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			if sec.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", sec.ReferrerPolicy)
			}
			if hsts != "" && r.TLS != nil {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}
