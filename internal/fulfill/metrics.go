package fulfill

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FulfillmentsTotal tracks submitted fulfillments by protocol.
	FulfillmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_fulfillments_total",
			Help: "Total number of submitted fulfillment transactions",
		},
		[]string{"protocol"},
	)

	// FulfillmentErrorsTotal tracks failed fulfillments by protocol.
	FulfillmentErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_fulfillment_errors_total",
			Help: "Total number of failed fulfillment attempts",
		},
		[]string{"protocol"},
	)

	// EncodeDurationSeconds tracks handler encode latency by protocol,
	// including collaborator reads (fee schedule, royalties, nonces).
	EncodeDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ethereum_sdk_encode_duration_seconds",
			Help:    "Duration of fulfillment call encoding",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"protocol"},
	)
)
