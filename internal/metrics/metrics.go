// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trivia_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "route"},
	)

	QuizQuestionsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_quiz_questions_served_total",
			Help: "Quiz rounds by outcome (served, exhausted)",
		},
		[]string{"outcome"},
	)

	QuizAnswersChecked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_quiz_answers_checked_total",
			Help: "Graded quiz answers by result (correct, incorrect)",
		},
		[]string{"result"},
	)

	QuestionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_questions_mutations_total",
			Help: "Committed question creates and deletes",
		},
		[]string{"op"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_cache_requests_total",
			Help: "Category cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trivia_circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed, 1=half-open, 2=open",
		},
		[]string{"name"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trivia_websocket_clients",
			Help: "Connected websocket clients",
		},
	)
)

// RecordHTTPRequest records one finished request
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
