// Package metrics exposes the engine's Prometheus instrumentation.
// All collectors are registered on the default registry; the HTTP
// adapter serves them under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts dispatched commands by kind and outcome.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flume_commands_total",
		Help: "Total number of commands dispatched to the engine",
	}, []string{"command", "outcome"})

	// ParseDiagnosticsTotal counts line diagnostics produced by the codec.
	ParseDiagnosticsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flume_parse_diagnostics_total",
		Help: "Total number of DSL parse diagnostics reported",
	})

	// HistoryDepth tracks the current size of the undo stack.
	HistoryDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flume_history_depth",
		Help: "Current number of snapshots on the undo stack",
	})

	// HistoryEvictionsTotal counts snapshots silently dropped at the cap.
	HistoryEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flume_history_evictions_total",
		Help: "Total number of undo snapshots evicted by the history bound",
	})
)

// ObserveCommand records one command dispatch.
func ObserveCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CommandsTotal.WithLabelValues(command, outcome).Inc()
}
