package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the chat service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ChatRequests      *prometheus.CounterVec
	UpstreamErrors    *prometheus.CounterVec
	GenerationLatency prometheus.Histogram
	ActiveSessions    prometheus.GaugeFunc

	gatherer prometheus.Gatherer
}

// NewMetrics registers the instruments on reg
func NewMetrics(reg *prometheus.Registry, namespace string, activeSessions func() float64) *Metrics {
	factory := promauto.With(reg)
	if activeSessions == nil {
		activeSessions = func() float64 { return 0 }
	}
	return &Metrics{
		ChatRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by classified category and outcome.",
		}, []string{"category", "outcome"}),
		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Failed calls to the retriever or generator by stage.",
		}, []string{"stage"}),
		GenerationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_seconds",
			Help:      "Latency of retrieval plus generation for legal queries.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		ActiveSessions: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Conversations with remembered turns.",
		}, activeSessions),
		gatherer: reg,
	}
}

// ObserveRequest counts one chat request
func (m *Metrics) ObserveRequest(category, outcome string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(category, outcome).Inc()
}

// ObserveUpstreamError counts a failed retrieval or generation call
func (m *Metrics) ObserveUpstreamError(stage string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(stage).Inc()
}

// ObserveGeneration records how long a legal answer took
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.GenerationLatency.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
