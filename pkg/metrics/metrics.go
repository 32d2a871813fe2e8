// Package metrics provides the centralized Prometheus metrics registry for
// the quickload library. All metrics are defined in their respective
// packages (fetcher, prefetch, events) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the quickload library.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Fetch Metrics (pkg/fetcher):
//   - quickload_fetches_total{outcome} (Counter): Fetches by outcome
//     (success, contract_violation, error, or HTTP status code)
//   - quickload_fetch_duration_seconds (Histogram): Fetch duration
//   - quickload_fetch_items (Histogram): Items returned per fetch
//
// Coordinator Metrics (pkg/prefetch):
//   - quickload_buffer_items (Gauge): Items currently buffered and undelivered
//   - quickload_items_delivered_total (Counter): Items delivered to callers
//   - quickload_requests_total{path} (Counter): Request calls by serving path
//     (drain, fetch, wait)
//   - quickload_background_fetches_total (Counter): Opportunistic background
//     fetches started after a drain
//
// Event Metrics (pkg/events):
//   - quickload_events_emitted_total{event} (Counter): Lifecycle events by
//     published name
//
// Example Prometheus Queries:
//
//   # Share of requests served straight from the buffer
//   rate(quickload_requests_total{path="drain"}[5m]) /
//   sum(rate(quickload_requests_total[5m]))
//
//   # Fetch Error Rate
//   rate(quickload_fetches_total{outcome!="success"}[5m])
//
//   # P95 Fetch Latency
//   histogram_quantile(0.95, rate(quickload_fetch_duration_seconds_bucket[5m]))
//
//   # Buffer Level
//   quickload_buffer_items
