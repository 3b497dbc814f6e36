package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordLLMAttemptAndFailover(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordLLMAttempt("anthropic", "code_edit_llm", "ok")
	m.RecordLLMAttempt("anthropic", "code_edit_llm", "error")
	m.RecordLLMFailover("anthropic", "openai")

	require.Equal(t, float64(1), testutil.ToFloat64(m.llmAttempts.WithLabelValues("anthropic", "code_edit_llm", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.llmAttempts.WithLabelValues("anthropic", "code_edit_llm", "error")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.llmFailovers.WithLabelValues("anthropic", "openai")))
}

func TestRecordToolInvocation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordToolInvocation("open_file", "ok", 0.01)
	m.RecordToolInvocation("open_file", "ok", 0.02)

	require.Equal(t, float64(2), testutil.ToFloat64(m.toolInvocations.WithLabelValues("open_file", "ok")))
	require.Equal(t, uint64(1), testutil.CollectAndCount(m.toolDuration))
}

func TestRecordSearchRun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordSearchRun(3, 5)

	require.Equal(t, float64(1), testutil.ToFloat64(m.searchRuns))
}

func TestSetSymbolActors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.SetSymbolActors(7)
	require.Equal(t, float64(7), testutil.ToFloat64(m.symbolActors))

	m.SetSymbolActors(2)
	require.Equal(t, float64(2), testutil.ToFloat64(m.symbolActors))
}

func TestRecordHTTPRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RecordHTTPRequest("/v1/plans", "200", 0.05)
	require.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("/v1/plans", "200")))
}
