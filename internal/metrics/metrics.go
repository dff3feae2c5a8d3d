package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for trace store queries.
const (
	OutcomeSuccess        = "success"
	OutcomeAuthError      = "auth_error"
	OutcomeQueryError     = "query_error"
	OutcomeTransportError = "transport_error"
)

var (
	TraceStoreQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracedash_trace_store_queries_total",
		Help: "Trace store queries executed, by outcome.",
	}, []string{"outcome"})

	TreeBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedash_tree_builds_total",
		Help: "Conversation trees assembled from span lists.",
	})

	TreeCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedash_tree_cache_hits_total",
		Help: "Conversation tree lookups served from the cache.",
	})

	TreeCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedash_tree_cache_misses_total",
		Help: "Conversation tree lookups that required a rebuild.",
	})

	DiagnosticsRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracedash_diagnostics_runs_total",
		Help: "Diagnostics engine invocations.",
	})
)
