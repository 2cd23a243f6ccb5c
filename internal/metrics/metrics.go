// Package metrics holds the Prometheus collectors of the client and daemon
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for dispatch, wallets and node traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	dispatchCounter  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	connectedWallets prometheus.Gauge
	nodeRequests     *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swapkit_dispatch_total",
				Help: "Total number of dispatched client operations",
			},
			[]string{"operation", "target", "status"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swapkit_dispatch_duration_seconds",
				Help:    "Dispatch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		connectedWallets: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "swapkit_connected_wallets",
				Help: "Number of chains with a connected wallet",
			},
		),
		nodeRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swapkit_node_requests_total",
				Help: "Total number of THORNode/MAYANode requests",
			},
			[]string{"network", "endpoint", "status"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "swapkit_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"network"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "swapkit_http_requests_total",
				Help: "Total number of HTTP API requests",
			},
			[]string{"route", "status"},
		),
	}

	reg.MustRegister(
		m.dispatchCounter,
		m.dispatchDuration,
		m.connectedWallets,
		m.nodeRequests,
		m.breakerState,
		m.httpRequests,
	)
	return m
}

// ObserveDispatch records the outcome and latency of a client operation
func (m *Metrics) ObserveDispatch(operation, target string, err error, start time.Time) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.dispatchCounter.WithLabelValues(operation, target, status).Inc()
	m.dispatchDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetConnectedWallets records the wallet registry size
func (m *Metrics) SetConnectedWallets(n int) {
	if m == nil {
		return
	}
	m.connectedWallets.Set(float64(n))
}

// NodeRequest counts a node request outcome
func (m *Metrics) NodeRequest(network, endpoint, status string) {
	if m == nil {
		return
	}
	m.nodeRequests.WithLabelValues(network, endpoint, status).Inc()
}

// SetBreakerState records the circuit breaker state of a node client
func (m *Metrics) SetBreakerState(network string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(network).Set(float64(state))
}

// HTTPRequest counts an API request
func (m *Metrics) HTTPRequest(route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
