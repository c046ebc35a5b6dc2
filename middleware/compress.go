// middleware/compress.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/routenav/config"
	"github.com/go-chi/chi/v5/middleware"
)

// CompressFromConfig gzip/deflate-encodes JSON responses at
// coreCfg.CompressionLevel. Level 0 (or a nil config) disables it; the level
// range is enforced by config validation.
func CompressFromConfig(coreCfg *config.CoreConfig) func(next http.Handler) http.Handler {
	if coreCfg == nil || coreCfg.CompressionLevel == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Compress(coreCfg.CompressionLevel, "application/json")
}
