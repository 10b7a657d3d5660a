package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sammcj/mcp-sheets/internal/schema"
)

// Prometheus collectors are always on; they cost nothing until scraped.
var (
	promRegistry = prometheus.NewRegistry()

	promToolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_sheets_tool_calls_total",
			Help: "Total number of tool invocations by outcome",
		},
		[]string{"tool", "transport", "outcome"},
	)
	promToolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcp_sheets_tool_duration_seconds",
			Help:    "Duration of tool invocations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"tool", "outcome"},
	)
	promToolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcp_sheets_tool_errors_total",
			Help: "Total number of tool errors by category",
		},
		[]string{"tool", "category"},
	)
)

func init() {
	promRegistry.MustRegister(
		promToolCalls,
		promToolDuration,
		promToolErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// PrometheusHandler serves the tool metrics in the Prometheus text format.
func PrometheusHandler() http.Handler {
	return promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
}

var knownTools = func() map[string]bool {
	known := make(map[string]bool)
	for _, t := range schema.Tools() {
		known[t.Name] = true
	}
	return known
}()

// toolLabel keeps label cardinality bounded when callers send unknown names.
func toolLabel(name string) string {
	if knownTools[name] {
		return name
	}
	return "unknown"
}
