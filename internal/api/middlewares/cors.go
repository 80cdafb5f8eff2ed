package middlewares

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

const (
	maxAge = 300
)

func CorsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		// the receipt download sets a file name
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         maxAge,
	})
	return c.Handler
}
