package middleware

import (
	"net/http"

	"github.com/JonMunkholm/datasets/internal/config"
	"github.com/go-chi/cors"
)

// CORS allows read-only cross-origin access to the API from the
// configured origins.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         int(cfg.MaxAge.Seconds()),
	})
}
