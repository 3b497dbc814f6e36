// Package observability exposes the Symbol Orchestration Core's Prometheus
// metrics, built the way internal/observability/metrics.go builds its
// Metrics struct in the teacher repo: one promauto-registered vector per
// concern, embedded as fields on a single Metrics struct constructed once at
// process start, plus a convenience Record/Set method per metric group so
// call sites never touch prometheus labels directly.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the process registers. A nil
// *Metrics is not valid; construct one with NewMetrics and share it across
// the broker, dispatcher, and search loop the way the teacher shares its
// Metrics across channel adapters.
type Metrics struct {
	llmAttempts  *prometheus.CounterVec
	llmDuration  *prometheus.HistogramVec
	llmFailovers *prometheus.CounterVec

	toolInvocations *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec

	searchRuns       prometheus.Counter
	searchIterations prometheus.Histogram
	searchSelected   prometheus.Histogram

	symbolActors prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics builds and registers every collector against reg.
// cmd/symborchd passes its own prometheus.NewRegistry(), and tests pass a
// fresh registry too, so nothing collides with other packages'
// default-registry state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		llmAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symborch",
			Subsystem: "llm",
			Name:      "attempts_total",
			Help:      "Completion attempts by provider, tool, and outcome (ok|error).",
		}, []string{"provider", "tool", "outcome"}),
		llmDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "symborch",
			Subsystem: "llm",
			Name:      "attempt_duration_seconds",
			Help:      "Wall-clock duration of a single completion attempt.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider", "tool"}),
		llmFailovers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symborch",
			Subsystem: "llm",
			Name:      "failovers_total",
			Help:      "Even-numbered retry attempts that switched to the fail-over provider.",
		}, []string{"from_provider", "to_provider"}),

		toolInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symborch",
			Subsystem: "dispatcher",
			Name:      "tool_invocations_total",
			Help:      "Dispatcher invocations by ToolType and outcome (ok|error).",
		}, []string{"tool_type", "outcome"}),
		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "symborch",
			Subsystem: "dispatcher",
			Name:      "tool_invocation_duration_seconds",
			Help:      "Wall-clock duration of a single tool dispatch, including any LLM round trip the handler makes.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"tool_type"}),

		searchRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "symborch",
			Subsystem: "search",
			Name:      "runs_total",
			Help:      "Completed iterative search loop runs.",
		}),
		searchIterations: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "symborch",
			Subsystem: "search",
			Name:      "iterations",
			Help:      "Number of search→identify→decide iterations a run took before stopping.",
			Buckets:   []float64{1, 2, 3},
		}),
		searchSelected: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "symborch",
			Subsystem: "search",
			Name:      "files_selected",
			Help:      "Number of distinct files the identify step kept across a run.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		symbolActors: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "symborch",
			Subsystem: "symbols",
			Name:      "actors",
			Help:      "Live per-symbol actor goroutines, sampled from symbols.Locker.ActorCount().",
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symborch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served by symborchd, by route and status class.",
		}, []string{"route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "symborch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request handling duration, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// RecordLLMAttempt satisfies llmbroker.MetricsRecorder.
func (m *Metrics) RecordLLMAttempt(provider, toolName, outcome string) {
	m.llmAttempts.WithLabelValues(provider, toolName, outcome).Inc()
}

// RecordLLMAttemptDuration observes the wall-clock time of a single attempt.
// llmbroker itself only reports outcome, and nothing in cmd/symborchd calls
// this method, so the duration histogram stays empty unless a caller does.
func (m *Metrics) RecordLLMAttemptDuration(provider, toolName string, durationSeconds float64) {
	m.llmDuration.WithLabelValues(provider, toolName).Observe(durationSeconds)
}

// RecordLLMFailover satisfies llmbroker.MetricsRecorder.
func (m *Metrics) RecordLLMFailover(fromProvider, toProvider string) {
	m.llmFailovers.WithLabelValues(fromProvider, toProvider).Inc()
}

// RecordToolInvocation satisfies tooldispatch.MetricsRecorder.
func (m *Metrics) RecordToolInvocation(toolType, outcome string, durationSeconds float64) {
	m.toolInvocations.WithLabelValues(toolType, outcome).Inc()
	m.toolDuration.WithLabelValues(toolType).Observe(durationSeconds)
}

// RecordSearchRun satisfies search.MetricsRecorder.
func (m *Metrics) RecordSearchRun(iterations, filesSelected int) {
	m.searchRuns.Inc()
	m.searchIterations.Observe(float64(iterations))
	m.searchSelected.Observe(float64(filesSelected))
}

// SetSymbolActors sets the live actor gauge to count. cmd/symborchd does not
// call it; its health handler reports symbols.Locker.ActorCount() directly.
func (m *Metrics) SetSymbolActors(count int) {
	m.symbolActors.Set(float64(count))
}

// RecordHTTPRequest is called by the chi middleware installed in
// cmd/symborchd after each request completes.
func (m *Metrics) RecordHTTPRequest(route, status string, durationSeconds float64) {
	m.httpRequests.WithLabelValues(route, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(durationSeconds)
}
