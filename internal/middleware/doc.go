// Package middleware provides the echo middleware stack of the trivia API:
// CORS headers, request IDs, structured request logging, Prometheus
// instrumentation and per-client rate limiting.
package middleware
