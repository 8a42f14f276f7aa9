package orbex

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics of the SDK. All Metrics methods
// are nil-safe; a Client built without metrics records nothing.
type Metrics struct {
	// Signing metrics
	TxSignedTotal *prometheus.CounterVec

	// Gateway metrics
	TxSubmitted      *prometheus.CounterVec
	AccountLookups   prometheus.Counter
	AccountLookupErr prometheus.Counter

	// Market stream metrics
	StreamConnectsTotal    prometheus.Counter
	StreamMessagesReceived prometheus.Counter
	StreamSubscriptions    prometheus.Gauge
}

// NewMetrics initializes and registers metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry initializes and registers metrics with a custom
// registry. Tests pass their own registry so parallel clients do not collide.
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		TxSignedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbex_tx_signed_total",
				Help: "The total number of transactions signed, by type URL and replay-protection mode",
			},
			[]string{"type_url", "mode"},
		),
		TxSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbex_tx_submitted_total",
				Help: "The total number of transaction submissions, by type URL and outcome",
			},
			[]string{"type_url", "status"},
		),
		AccountLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbex_account_lookups_total",
			Help: "The total number of account state lookups against the gateway",
		}),
		AccountLookupErr: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbex_account_lookup_errors_total",
			Help: "The total number of failed account state lookups",
		}),
		StreamConnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbex_stream_connects_total",
			Help: "The total number of market stream connections made",
		}),
		StreamMessagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "orbex_stream_messages_received_total",
			Help: "The total number of market stream frames received",
		}),
		StreamSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "orbex_stream_subscriptions",
			Help: "The current number of active market stream subscriptions",
		}),
	}
}

func (m *Metrics) recordTxSigned(typeURL string, unordered bool) {
	if m == nil {
		return
	}
	mode := "ordered"
	if unordered {
		mode = "unordered"
	}
	m.TxSignedTotal.WithLabelValues(typeURL, mode).Inc()
}

func (m *Metrics) recordTxSubmitted(typeURL string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "fail"
	}
	m.TxSubmitted.WithLabelValues(typeURL, status).Inc()
}

func (m *Metrics) recordAccountLookup(err error) {
	if m == nil {
		return
	}
	m.AccountLookups.Inc()
	if err != nil {
		m.AccountLookupErr.Inc()
	}
}

func (m *Metrics) recordStreamConnect() {
	if m == nil {
		return
	}
	m.StreamConnectsTotal.Inc()
}

func (m *Metrics) recordStreamMessage() {
	if m == nil {
		return
	}
	m.StreamMessagesReceived.Inc()
}

func (m *Metrics) recordStreamSubscriptions(delta float64) {
	if m == nil {
		return
	}
	m.StreamSubscriptions.Add(delta)
}
