// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec // by method and track
	TokensQualified    prometheus.Counter
	RiskVetoes         *prometheus.CounterVec // by first rejection reason
	EvaluationDuration prometheus.Histogram
	FinalScore         prometheus.Histogram

	// Module metrics
	ModuleExecutions *prometheus.CounterVec // by module and result
	ModuleDuration   *prometheus.HistogramVec
	ModuleTimeouts   *prometheus.CounterVec

	// Liquidity cache metrics
	PoolEventsParsed prometheus.Counter
	CacheStores      prometheus.Counter
	CacheThrottled   prometheus.Counter
	CacheEntries     prometheus.Gauge
	CacheRetrievals  prometheus.Counter

	// Lifecycle metrics
	Reclassifications *prometheus.CounterVec // by rule
	ReevaluationBatch prometheus.Gauge
	RecordsPurged     prometheus.Counter

	// Provider metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_qualifier"
	}

	return &Metrics{
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "evaluations_total",
			Help:      "Total number of token evaluations by method and track",
		}, []string{"method", "track"}),
		TokensQualified: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "tokens_qualified_total",
			Help:      "Total number of tokens that passed the qualification threshold",
		}),
		RiskVetoes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "risk_vetoes_total",
			Help:      "Total number of risk gate vetoes by first rejection reason",
		}, []string{"reason"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "duration_seconds",
			Help:      "Full evaluation duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		FinalScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "final_score",
			Help:      "Distribution of final evaluation scores",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 10),
		}),

		ModuleExecutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "modules",
			Name:      "executions_total",
			Help:      "Total number of signal module executions by module and result",
		}, []string{"module", "result"}),
		ModuleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "modules",
			Name:      "duration_seconds",
			Help:      "Signal module execution duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"module"}),
		ModuleTimeouts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "modules",
			Name:      "timeouts_total",
			Help:      "Total number of signal module timeouts",
		}, []string{"module"}),

		PoolEventsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "pool_events_parsed_total",
			Help:      "Total number of pool creation events parsed from logs",
		}),
		CacheStores: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "cache_stores_total",
			Help:      "Total number of accepted liquidity cache stores",
		}),
		CacheThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "cache_throttled_total",
			Help:      "Total number of stores rejected by the write throttle",
		}),
		CacheEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "cache_entries",
			Help:      "Current number of entries in the liquidity cache",
		}),
		CacheRetrievals: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "liquidity",
			Name:      "cache_retrievals_total",
			Help:      "Total number of entries handed out by cache reads",
		}),

		Reclassifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "reclassifications_total",
			Help:      "Total number of matched reclassification rules",
		}, []string{"rule"}),
		ReevaluationBatch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "reevaluation_batch_size",
			Help:      "Size of the most recent reevaluation batch",
		}),
		RecordsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "records_purged_total",
			Help:      "Total number of rejected records removed by the retention sweep",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC call latency in seconds by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_errors_total",
			Help:      "Total number of RPC call errors by method",
		}, []string{"method"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEvaluation records a completed evaluation.
func RecordEvaluation(method, track string, durationSeconds, finalScore float64, qualified bool) {
	DefaultMetrics.EvaluationsTotal.WithLabelValues(method, track).Inc()
	DefaultMetrics.EvaluationDuration.Observe(durationSeconds)
	DefaultMetrics.FinalScore.Observe(finalScore)
	if qualified {
		DefaultMetrics.TokensQualified.Inc()
	}
}

// RecordRiskVeto records a risk gate veto with its first rejection reason.
func RecordRiskVeto(reasons []string) {
	reason := "unknown"
	if len(reasons) > 0 {
		reason = reasons[0]
	}
	DefaultMetrics.RiskVetoes.WithLabelValues(reason).Inc()
}

// RecordModuleExecution records one signal module run.
func RecordModuleExecution(module string, seconds float64, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	DefaultMetrics.ModuleExecutions.WithLabelValues(module, result).Inc()
	DefaultMetrics.ModuleDuration.WithLabelValues(module).Observe(seconds)
}

// RecordModuleTimeout records a signal module timeout.
func RecordModuleTimeout(module string) {
	DefaultMetrics.ModuleTimeouts.WithLabelValues(module).Inc()
}

// RecordPoolEventParsed increments the parsed pool events counter.
func RecordPoolEventParsed() {
	DefaultMetrics.PoolEventsParsed.Inc()
}

// RecordCacheStore records the outcome of a liquidity cache store attempt.
func RecordCacheStore(accepted bool) {
	if accepted {
		DefaultMetrics.CacheStores.Inc()
	} else {
		DefaultMetrics.CacheThrottled.Inc()
	}
}

// UpdateCacheEntries updates the cache size gauge.
func UpdateCacheEntries(entries int) {
	DefaultMetrics.CacheEntries.Set(float64(entries))
}

// RecordReclassification records a matched reclassification rule.
func RecordReclassification(rule string) {
	DefaultMetrics.Reclassifications.WithLabelValues(rule).Inc()
}

// RecordRPCCall records RPC call latency and errors.
func RecordRPCCall(method string, seconds float64, err error) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
