// Package metrics holds the Prometheus collectors for the wallet service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// LedgerOperations counts engine use cases by outcome.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wallet",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Total ledger operations by operation and outcome.",
}, []string{"operation", "outcome"})

// LedgerOperationDuration tracks how long a use case takes, retries included.
var LedgerOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "wallet",
	Subsystem: "ledger",
	Name:      "operation_duration_seconds",
	Help:      "Ledger operation latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation"})

// LedgerConflictRetries counts units of work replayed after a write conflict.
var LedgerConflictRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wallet",
	Subsystem: "ledger",
	Name:      "conflict_retries_total",
	Help:      "Total units of work retried after a concurrent modification.",
}, []string{"operation"})

// LedgerReplayMismatches counts wallets whose stored balance disagrees with replay.
var LedgerReplayMismatches = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "wallet",
	Subsystem: "ledger",
	Name:      "replay_mismatches_total",
	Help:      "Total wallet balances found inconsistent with their transaction history.",
})

// ─── Notification Metrics ───────────────────────────────────────────────────

// NotificationsDelivered counts notification deliveries by channel and result.
var NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wallet",
	Subsystem: "notify",
	Name:      "deliveries_total",
	Help:      "Total notification deliveries by channel and result.",
}, []string{"channel", "result"})

// ─── HTTP Metrics ───────────────────────────────────────────────────────────

// HTTPRequests counts served requests by route pattern and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wallet",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by method, route and status.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks request latency by route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "wallet",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// ObserveLedgerOperation records one finished use case.
func ObserveLedgerOperation(operation, outcome string, elapsed time.Duration) {
	LedgerOperations.WithLabelValues(operation, outcome).Inc()
	LedgerOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Instrument records request counts and latency keyed by the chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
