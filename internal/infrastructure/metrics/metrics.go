package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IssuanceTotal tracks issuance outcomes by type, action and result
	IssuanceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scriptlm_issuance_total",
		Help: "Total number of license issuance requests processed",
	}, []string{"issue_type", "action", "result"})

	// IssuanceDuration tracks end-to-end issuance pipeline time
	IssuanceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scriptlm_issuance_duration_seconds",
		Help:    "Histogram of issuance pipeline duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	// OracleCacheOperations tracks demo-key cache hits and misses
	OracleCacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scriptlm_oracle_cache_operations_total",
		Help: "Total number of demo-key oracle cache hits and misses",
	}, []string{"result"})

	// OracleLookups tracks remote license-manager lookups
	OracleLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scriptlm_oracle_lookups_total",
		Help: "Total number of remote demo-key lookups",
	}, []string{"result"})

	// DBConnectionsActive tracks open database connections
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scriptlm_db_connections_active",
		Help: "Number of active database connections",
	})
)
