// Package metrics registers the process-wide Prometheus collectors.
// Components increment these directly; the HTTP server exposes them at
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts upstream OHLCV fetches by outcome
	// (success, invalid_symbol, transport_error, insufficient_data).
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "data",
		Name:      "fetch_total",
		Help:      "Upstream OHLCV fetches by outcome",
	}, []string{"outcome"})

	// FetchCacheHits / FetchCacheMisses track the bar-series cache.
	FetchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "data",
		Name:      "fetch_cache_hits_total",
		Help:      "Bar series cache hits",
	})
	FetchCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "data",
		Name:      "fetch_cache_misses_total",
		Help:      "Bar series cache misses",
	})

	// AnalysisCacheHits tracks memoized per-symbol analyses.
	AnalysisCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "core",
		Name:      "analysis_cache_hits_total",
		Help:      "Analysis cache hits",
	})

	// AnalysisTotal counts completed per-symbol analyses by outcome.
	AnalysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "core",
		Name:      "analysis_total",
		Help:      "Per-symbol analyses by outcome",
	}, []string{"outcome"})

	// RankerFallbacks counts remote-ranker failures recovered by the
	// rule-based scorer.
	RankerFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "rank",
		Name:      "fallbacks_total",
		Help:      "Remote ranker failures recovered by rule-based scoring",
	})

	// ScanDuration observes universe scan wall time.
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marketlens",
		Subsystem: "scan",
		Name:      "duration_seconds",
		Help:      "Universe scan duration",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	}, []string{"universe"})

	// ScanSymbolErrors counts per-symbol failures inside fan-out
	// operations; these never abort the operation.
	ScanSymbolErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "scan",
		Name:      "symbol_errors_total",
		Help:      "Per-symbol errors captured during fan-out",
	}, []string{"code"})
)
