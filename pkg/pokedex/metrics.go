package pokedex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_aggregations_total",
			Help: "Total entity aggregations by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	degradedFieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_degraded_fields_total",
			Help: "Total records served with a degraded field because an optional upstream fetch failed.",
		},
		[]string{"field"},
	)

	refreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokedex_refresh_runs_total",
			Help: "Total refresh runs by artifact and outcome.",
		},
		[]string{"artifact", "outcome"},
	)

	refreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokedex_refresh_duration_seconds",
			Help:    "Duration of refresh runs in seconds by artifact.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"artifact"},
	)

	refreshSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokedex_refresh_skipped_ids_total",
			Help: "Total Pokémon IDs skipped during summary builds because aggregation failed.",
		},
	)

	cacheCorruptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokedex_cache_corrupt_total",
			Help: "Total cache entries dropped because they failed decoding or validation.",
		},
	)
)

// Label values for aggregationsTotal.
const (
	outcomeSuccess       = "success"
	outcomeNotFound      = "not_found"
	outcomeUpstreamError = "upstream_error"
	outcomeInvalid       = "invalid"
)

// Label values for refreshRunsTotal.
const (
	runSuccess  = "success"
	runFailure  = "failure"
	runConflict = "conflict"
)
