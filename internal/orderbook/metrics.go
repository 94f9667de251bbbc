package orderbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestDurationSeconds tracks order book HTTP request latency.
	RequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ethereum_sdk_orderbook_request_duration_seconds",
			Help:    "Duration of order book HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RequestErrorsTotal counts failed order book HTTP requests.
	RequestErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_orderbook_request_errors_total",
			Help: "Total number of failed order book HTTP requests",
		},
	)

	// StreamConnected is 1 while the order stream socket is up.
	StreamConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ethereum_sdk_orderbook_stream_connected",
			Help: "Whether the order stream WebSocket is connected",
		},
	)

	// SubscribedCollections tracks the live subscription count.
	SubscribedCollections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ethereum_sdk_orderbook_subscribed_collections",
			Help: "Number of collections subscribed on the order stream",
		},
	)

	// EventsReceivedTotal counts stream events by type.
	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_orderbook_events_received_total",
			Help: "Total number of order stream events received",
		},
		[]string{"event_type"},
	)

	// EventsDroppedTotal counts events dropped on a full channel.
	EventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_orderbook_events_dropped_total",
			Help: "Total number of order stream events dropped",
		},
	)

	// ReconnectAttemptsTotal counts stream reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_orderbook_reconnect_attempts_total",
			Help: "Total number of order stream reconnection attempts",
		},
	)

	// ReconnectFailuresTotal counts failed reconnection attempts.
	ReconnectFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ethereum_sdk_orderbook_reconnect_failures_total",
			Help: "Total number of failed order stream reconnections",
		},
	)
)
