// Package middleware provides HTTP middleware for the trip planner API server.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORSHandler returns a middleware that applies CORS headers based on allowedOrigins.
// Each entry in allowedOrigins must be a full origin (scheme + host, no trailing slash).
// Allowed methods cover the draft editor surface, which uses PATCH for stop edits.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		// The browser needs Location to find a freshly created draft.
		ExposedHeaders: []string{"Location"},
	})
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}
