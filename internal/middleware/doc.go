// Package middleware provides HTTP middleware for request logging and
// Prometheus metrics.
//
// Logger writes W3C extended log lines with every client-controlled field
// sanitised against log injection. Metrics labels requests by their
// gorilla/mux route template rather than the raw path.
package middleware
