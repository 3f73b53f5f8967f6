// Package metrics records turn outcomes as Prometheus collectors and keeps
// a small in-process snapshot for the health endpoint.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/flemzord/parley/internal/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parley"

// Metrics implements chat.Observer. It owns a private registry so tests
// and multiple instances never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	turns         *prometheus.CounterVec
	gatewayErrors *prometheus.CounterVec
	duration      prometheus.Histogram
	history       prometheus.Gauge
	tokens        *prometheus.CounterVec

	completions  atomic.Int64
	failures     atomic.Int64
	totalTokens  atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		gatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "Failed completion calls by error kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_duration_seconds",
			Help:      "Latency of completion calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		history: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_messages",
			Help:      "Messages currently held in the conversation log.",
		}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens consumed by direction.",
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		m.turns,
		m.gatewayErrors,
		m.duration,
		m.history,
		m.tokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// TurnCompleted records a successful turn.
func (m *Metrics) TurnCompleted(latency time.Duration, usage provider.TokenUsage, historyLen int) {
	m.turns.WithLabelValues("success").Inc()
	m.duration.Observe(latency.Seconds())
	m.history.Set(float64(historyLen))
	m.tokens.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	m.tokens.WithLabelValues("completion").Add(float64(usage.CompletionTokens))

	m.completions.Add(1)
	m.totalTokens.Add(int64(usage.TotalTokens))
	m.totalLatency.Add(int64(latency))
}

// TurnFailed records a failed turn.
func (m *Metrics) TurnFailed(kind provider.ErrorKind, latency time.Duration) {
	if kind == provider.KindNone {
		kind = provider.KindUnknown
	}
	m.turns.WithLabelValues("error").Inc()
	m.gatewayErrors.WithLabelValues(string(kind)).Inc()
	m.duration.Observe(latency.Seconds())
	m.failures.Add(1)
}

// HistoryChanged tracks log replacements that happen outside a turn.
func (m *Metrics) HistoryChanged(historyLen int) {
	m.history.Set(float64(historyLen))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() Snapshot {
	completions := m.completions.Load()
	snap := Snapshot{
		Completions: completions,
		Failures:    m.failures.Load(),
		TotalTokens: m.totalTokens.Load(),
	}
	if completions > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / completions)
	}
	return snap
}

// Snapshot is a serializable metrics view.
type Snapshot struct {
	Completions int64         `json:"completions"`
	Failures    int64         `json:"failures"`
	TotalTokens int64         `json:"total_tokens"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
