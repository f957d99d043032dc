package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS allows the safety dashboard origins to call the API.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Block-Propagation"},
		MaxAge:         300, // 5 minutes
	})

	return c.Handler
}
