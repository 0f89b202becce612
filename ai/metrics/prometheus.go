// Package metrics provides Prometheus metrics export for the chat service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports chat service metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Turn metrics
	turnLatency *prometheus.HistogramVec
	turns       *prometheus.CounterVec
	turnsActive prometheus.Gauge

	// Tool call metrics
	toolCalls *prometheus.CounterVec

	// LLM metrics
	llmTokens *prometheus.CounterVec
	llmErrors *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.turnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gramsathi",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end chat turn latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"kind"},
	)

	e.turns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gramsathi",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total number of chat turns",
		},
		[]string{"kind", "status"},
	)

	e.turnsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gramsathi",
			Subsystem: "chat",
			Name:      "turns_active",
			Help:      "Number of chat turns currently streaming",
		},
	)

	e.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gramsathi",
			Subsystem: "ai",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls",
		},
		[]string{"tool_name", "status"},
	)

	e.llmTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gramsathi",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total LLM tokens by type",
		},
		[]string{"model", "type"},
	)

	e.llmErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gramsathi",
			Subsystem: "llm",
			Name:      "errors_total",
			Help:      "Total LLM transport errors",
		},
		[]string{"model", "phase"},
	)

	registry.MustRegister(
		e.turnLatency,
		e.turns,
		e.turnsActive,
		e.toolCalls,
		e.llmTokens,
		e.llmErrors,
	)

	return e
}

// RecordTurn records a completed chat turn. kind is "send" or "regenerate".
func (e *PrometheusExporter) RecordTurn(kind string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.turns.WithLabelValues(kind, status).Inc()
	e.turnLatency.WithLabelValues(kind).Observe(latency.Seconds())
}

// TurnStarted and TurnFinished track the in-flight gauge.
func (e *PrometheusExporter) TurnStarted()  { e.turnsActive.Inc() }
func (e *PrometheusExporter) TurnFinished() { e.turnsActive.Dec() }

// RecordToolCall records one tool execution.
func (e *PrometheusExporter) RecordToolCall(toolName string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.toolCalls.WithLabelValues(toolName, status).Inc()
}

// RecordLLMTokens records token usage for one call.
func (e *PrometheusExporter) RecordLLMTokens(model string, promptTokens, completionTokens int) {
	if promptTokens > 0 {
		e.llmTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		e.llmTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// RecordLLMError records a transport failure. phase is "initial" or "final".
func (e *PrometheusExporter) RecordLLMError(model, phase string) {
	e.llmErrors.WithLabelValues(model, phase).Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (e *PrometheusExporter) Registry() *prometheus.Registry {
	return e.registry
}
