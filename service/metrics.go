package service

import (
	"time"

	"mynaming/helpers"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "naming_client"

// Result label values of naming_client_requests_total.
const (
	resultOK = "ok"
)

// Metrics holds the Prometheus collectors of one naming client: request outcomes and latency,
// redo replay outcomes and the current redo store size.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	redoReplays     *prometheus.CounterVec
	redoEntries     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg. Panics on nil reg or on duplicate registration (fail-fast at startup).
//
// Parameter reg - registerer (prometheus.DefaultRegisterer in cmd/main, prometheus.NewRegistry() in tests).
//
// Returns: *Metrics.
//
// Called from cmd/main and tests before NewNamingProxy.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	reg = helpers.NilPanic(reg, "service.metrics.go: registerer is required")
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Naming requests by request type and result (ok, application, protocol, remote).",
		}, []string{"type", "result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of naming requests including signing and validation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		redoReplays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "redo_replays_total",
			Help:      "Redo entries replayed after (re)connection by entry kind and result.",
		}, []string{"kind", "result"}),
		redoEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "redo_entries",
			Help:      "Entries currently held in the redo store by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.redoReplays, m.redoEntries)
	m.setRedoEntries(0, 0)
	return m
}

func (m *Metrics) observeRequest(requestType string, err error, elapsed time.Duration) {
	result := resultOK
	if ne := ToNamingError(err); ne != nil {
		result = string(ne.Kind)
	} else if err != nil {
		result = string(KindRemote)
	}
	m.requests.WithLabelValues(requestType, result).Inc()
	m.requestDuration.WithLabelValues(requestType).Observe(elapsed.Seconds())
}

func (m *Metrics) observeReplay(kind string, err error) {
	result := resultOK
	if err != nil {
		result = "failed"
	}
	m.redoReplays.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) setRedoEntries(registrations, subscriptions int) {
	m.redoEntries.WithLabelValues(redoKindRegistration).Set(float64(registrations))
	m.redoEntries.WithLabelValues(redoKindSubscription).Set(float64(subscriptions))
}
