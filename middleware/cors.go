// middleware/cors.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/routenav/config"
	"github.com/go-chi/cors"
)

// CORSFromConfig applies go-chi/cors with the CORS section of coreCfg.
// With CORS disabled (or a nil config) it is an identity middleware, so it
// can be installed unconditionally.
func CORSFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || !coreCfg.CORS.EnableCORS {
		return func(next http.Handler) http.Handler { return next }
	}

	c := coreCfg.CORS
	return cors.Handler(cors.Options{
		AllowedOrigins:   c.CORSAllowedOrigins,
		AllowedMethods:   c.CORSAllowedMethods,
		AllowedHeaders:   c.CORSAllowedHeaders,
		ExposedHeaders:   c.CORSExposedHeaders,
		AllowCredentials: c.CORSAllowCredentials,
		MaxAge:           c.CORSMaxAge,
	})
}
