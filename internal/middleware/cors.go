package middleware

import (
	"github.com/go-chi/cors"
)

// CORS returns cors.Options for the public HTTP surface. The verification
// page is meant to be opened directly in a browser, so the policy stays
// minimal: GET only.
func CORS() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
}
