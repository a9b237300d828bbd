// Package metrics provides centralized Prometheus metrics access for the FPDS client.
// All metrics are defined in their respective packages (gate, client, pagination)
// to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and a reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the FPDS client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves every registered metric in the Prometheus text format.
// Scrapes of the handler itself are counted on Registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		Registry,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}),
	)
}

// Names lists the metrics exported by this module.
var Names = []string{
	"fpds_gate_in_flight",
	"fpds_gate_wait_seconds",
	"fpds_requests_total",
	"fpds_request_duration_seconds",
	"fpds_errors_total",
	"fpds_retries_total",
	"fpds_retry_backoff_seconds",
	"fpds_retry_exhausted_total",
	"fpds_pages_fetched_total",
	"fpds_fetch_duration_seconds",
	"fpds_query_failures_total",
}

// Metrics Documentation
//
// Gate Metrics (pkg/gate):
//   - fpds_gate_in_flight (Gauge): Permits currently held across all gates
//   - fpds_gate_wait_seconds (Histogram): Time spent waiting for a permit
//
// Request Metrics (pkg/client):
//   - fpds_requests_total{status} (Counter): Requests by HTTP status, or network_error
//   - fpds_request_duration_seconds (Histogram): Single request duration
//   - fpds_errors_total{kind} (Counter): Failed requests by kind (request, network)
//
// Retry Metrics (pkg/client):
//   - fpds_retries_total{kind} (Counter): Retry attempts by error kind
//   - fpds_retry_backoff_seconds (Histogram): Backoff before each retry
//   - fpds_retry_exhausted_total{kind} (Counter): Requests that used every attempt
//
// Fetch Metrics (pkg/pagination):
//   - fpds_pages_fetched_total{outcome} (Counter): Pages fetched, ok or error
//   - fpds_fetch_duration_seconds (Histogram): Complete single-query fetch duration
//   - fpds_query_failures_total (Counter): Queries dropped by SearchContracts
//
// Example Prometheus Queries:
//
//   # Gate saturation
//   fpds_gate_in_flight
//
//   # Request Error Rate
//   rate(fpds_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(fpds_request_duration_seconds_bucket[5m]))
//
//   # Retries per request
//   sum(rate(fpds_retries_total[5m])) / sum(rate(fpds_requests_total[5m]))
