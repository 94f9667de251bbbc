package fees

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FeeFetchDurationSeconds tracks fee schedule fetch latency.
	FeeFetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ethereum_sdk_fee_fetch_duration_seconds",
		Help:    "Duration of fee schedule fetches",
		Buckets: prometheus.DefBuckets,
	})

	// FeeFetchErrorsTotal tracks transport failures against the fee
	// config endpoint.
	FeeFetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ethereum_sdk_fee_fetch_errors_total",
		Help: "Total number of failed fee schedule fetches",
	})
)
