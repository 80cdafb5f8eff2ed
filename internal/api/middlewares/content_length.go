package middlewares

import (
	"net/http"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

// ContentLengthMiddleware rejects oversized POST bodies up front and caps the
// body reader for requests that do not announce their length.
func ContentLengthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	limit := cfg.Server.MaxContentLength
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if r.ContentLength > limit {
					http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
