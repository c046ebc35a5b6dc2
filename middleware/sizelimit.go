// middleware/sizelimit.go
package middleware

import "net/http"

// LimitBodySize caps request bodies at maxBytes. maxBytes <= 0 disables the
// limit and returns next unchanged.
func LimitBodySize(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
