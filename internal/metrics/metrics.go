// Package metrics holds the Prometheus collectors shared by the gRPC and
// socket transports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	TransportGRPC   = "grpc"
	TransportSocket = "socket"
)

var (
	// RequestsTotal counts finished calls by transport, method and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_rpc_requests_total",
			Help: "Total number of todo RPC calls",
		},
		[]string{"transport", "method", "code"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_rpc_request_duration_seconds",
			Help:    "Histogram of todo RPC call durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport", "method"},
	)

	activeRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todo_rpc_active_requests",
			Help: "Number of todo RPC calls in flight",
		},
		[]string{"transport", "method"},
	)

	socketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "todo_socket_connections",
			Help: "Number of open socket connections",
		},
	)
)

// Begin marks a call as in flight. The returned func records its outcome;
// code is "OK" or the error tag / status code the call ended with.
func Begin(transport, method string) func(code string) {
	start := time.Now()
	active := activeRequests.WithLabelValues(transport, method)
	active.Inc()

	return func(code string) {
		active.Dec()
		requestDuration.WithLabelValues(transport, method).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(transport, method, code).Inc()
	}
}

func ConnectionOpened() { socketConnections.Inc() }

func ConnectionClosed() { socketConnections.Dec() }
