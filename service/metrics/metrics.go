package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// Ledger metrics
	transactionsSubmittedTotal *prometheus.CounterVec
	walletsCreatedTotal        prometheus.Counter
	blocksMinedTotal           prometheus.Counter
	miningDuration             prometheus.Histogram
	pendingPoolSize            prometheus.Gauge
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method and status",
			},
			[]string{"handler", "method", "status"},
		),
		transactionsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_submitted_total",
				Help: "Total number of submitted transactions by validation outcome",
			},
			[]string{"status"},
		),
		walletsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "wallets_created_total",
				Help: "Total number of wallets created",
			},
		),
		blocksMinedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "blocks_mined_total",
				Help: "Total number of blocks mined, including the genesis block",
			},
		),
		miningDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mining_duration_seconds",
				Help:    "Duration of the proof-of-work search per block in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 60, 300},
			},
		),
		pendingPoolSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pending_pool_size",
				Help: "Number of transactions currently awaiting the next block",
			},
		),
	}
}

// HTTP metric helpers

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

// Ledger metric helpers

// RecordTransactionSubmitted records a transaction submission and whether
// validation accepted it.
func (m *Metrics) RecordTransactionSubmitted(accepted bool) {
	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	m.transactionsSubmittedTotal.WithLabelValues(status).Inc()
}

// RecordWalletCreated records a wallet creation.
func (m *Metrics) RecordWalletCreated() {
	m.walletsCreatedTotal.Inc()
}

// RecordBlockMined records a sealed block and the proof-of-work duration.
func (m *Metrics) RecordBlockMined(duration float64) {
	m.blocksMinedTotal.Inc()
	m.miningDuration.Observe(duration)
}

// SetPendingPoolSize records the current pending-pool size.
func (m *Metrics) SetPendingPoolSize(size int) {
	m.pendingPoolSize.Set(float64(size))
}

// Helper functions

func statusCodeToString(code int) string {
	// Group status codes by class
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
