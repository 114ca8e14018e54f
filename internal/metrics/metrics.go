package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParseTotal counts parsed statements by statement kind and outcome.
	ParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "columnql_parse_total",
			Help: "Total number of parsed statements",
		},
		[]string{"kind", "status"},
	)
	// ParseDuration is the latency of tokenizing and parsing a statement.
	ParseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "columnql_parse_duration_seconds",
			Help:    "Statement parse latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	// TokenCacheTotal counts token cache lookups by result (hit, miss).
	TokenCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "columnql_token_cache_total",
			Help: "Total number of token cache lookups",
		},
		[]string{"result"},
	)
	// ExecutionsTotal counts statement executions by mode (sync, async), kind and outcome.
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "columnql_executions_total",
			Help: "Total number of statement executions",
		},
		[]string{"mode", "kind", "status"},
	)
	// StoreOperationsTotal counts store operations (select, delete, insert, load).
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "columnql_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)
	// StoreOperationDuration is the latency of store operations.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "columnql_store_operation_duration_seconds",
			Help:    "Store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	// StoreEntities is the number of entities held per column family.
	StoreEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "columnql_store_entities",
			Help: "Number of entities held per column family",
		},
		[]string{"family"},
	)
)

// Status maps an error to the status label value
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveParse records one parse
func ObserveParse(kind string, start time.Time, err error) {
	ParseTotal.WithLabelValues(kind, Status(err)).Inc()
	ParseDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveStore records one store operation
func ObserveStore(operation string, start time.Time, err error) {
	StoreOperationsTotal.WithLabelValues(operation, Status(err)).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
