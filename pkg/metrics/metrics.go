// Package metrics provides the centralized Prometheus registry reference for
// the pokedex service. All metrics are defined in their respective packages
// (pokeapi, cache, pokedex) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream Request Metrics (pkg/pokeapi):
//   - pokeapi_requests_total{endpoint, status} (Counter): Total PokeAPI requests by endpoint and HTTP status
//   - pokeapi_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - pokeapi_errors_total{class} (Counter): Errors by class (not_found, client, server, rate_limit, network)
//
// Retry Metrics (pkg/pokeapi):
//   - pokeapi_retries_total{error_class} (Counter): Retry attempts by error class
//   - pokeapi_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - pokeapi_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - pokedex_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - pokedex_cache_misses_total{layer} (Counter): Cache misses by layer
//   - pokedex_cache_errors_total{operation} (Counter): Cache operation errors
//
// Aggregation Metrics (pkg/pokedex):
//   - pokedex_aggregations_total{kind, outcome} (Counter): Aggregations by record kind and outcome
//   - pokedex_degraded_fields_total{field} (Counter): Optional fields dropped during aggregation
//   - pokedex_cache_corrupt_total (Counter): Cached entries dropped as unreadable or invalid
//
// Refresh Metrics (pkg/pokedex):
//   - pokedex_refresh_runs_total{artifact, outcome} (Counter): Refresh runs by artifact and outcome
//   - pokedex_refresh_duration_seconds{artifact} (Histogram): Refresh run duration by artifact
//   - pokedex_refresh_skipped_ids_total (Counter): IDs skipped during summary builds
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pokedex_cache_hits_total[5m])) /
//   (sum(rate(pokedex_cache_hits_total[5m])) + sum(rate(pokedex_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   rate(pokeapi_errors_total[5m])
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(pokeapi_request_duration_seconds_bucket[5m]))
//
//   # Refresh Failure Ratio
//   sum(rate(pokedex_refresh_runs_total{outcome="failure"}[1h])) /
//   sum(rate(pokedex_refresh_runs_total[1h]))
//
//   # Degradation Pressure
//   rate(pokedex_degraded_fields_total[5m])
