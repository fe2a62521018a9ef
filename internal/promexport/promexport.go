// Package promexport translates a kernel *seos.Metrics snapshot into
// Prometheus collectors, served over HTTP. Grounded on the teacher
// pack's use of prometheus/client_golang (warren's pkg/metrics):
// GaugeOpts/CounterOpts naming and promhttp.Handler() for the wire
// format, but with its own private *prometheus.Registry instead of
// package-level vars registered to the global default registry, since
// a kernel may run more than one instance per process in tests.
package promexport

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	seos "github.com/nexus5x-dev/device-google-contexthub"
)

// Exporter serves a point-in-time view of a kernel's *seos.Metrics as
// Prometheus gauges, read lazily on every scrape via GaugeFunc.
type Exporter struct {
	registry *prometheus.Registry
}

// New builds an Exporter reading from metrics. metrics must outlive
// the Exporter.
func New(metrics *seos.Metrics) *Exporter {
	reg := prometheus.NewRegistry()

	gauge := func(name, help string, read func(seos.MetricsSnapshot) uint64) {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: name, Help: help},
			func() float64 { return float64(read(metrics.Snapshot())) },
		))
	}

	gauge("seos_tasks_loaded", "Number of tasks loaded into the task table, including any later removed by a failed init.",
		func(s seos.MetricsSnapshot) uint64 { return s.TasksLoaded })
	gauge("seos_events_internal_total", "Cumulative events processed off the internal queue.",
		func(s seos.MetricsSnapshot) uint64 { return s.EventsInternal })
	gauge("seos_events_external_total", "Cumulative events processed off the external queue.",
		func(s seos.MetricsSnapshot) uint64 { return s.EventsExternal })
	gauge("seos_broadcasts_total", "Cumulative user events broadcast to subscribers.",
		func(s seos.MetricsSnapshot) uint64 { return s.Broadcasts })
	gauge("seos_handler_invocations_total", "Cumulative per-task Handle invocations from broadcasts.",
		func(s seos.MetricsSnapshot) uint64 { return s.HandlerInvocations })
	gauge("seos_queue_full_drops_total", "Cumulative enqueue attempts rejected because a queue was full.",
		func(s seos.MetricsSnapshot) uint64 { return s.QueueFullDrops })
	gauge("seos_slab_exhaustions_total", "Cumulative Alloc attempts rejected because the deferred-action slab was empty.",
		func(s seos.MetricsSnapshot) uint64 { return s.SlabExhaustions })
	gauge("seos_deferred_invocations_total", "Cumulative FuncDefer callbacks invoked.",
		func(s seos.MetricsSnapshot) uint64 { return s.DeferredInvocations })

	return &Exporter{registry: reg}
}

// Handler returns the HTTP handler a host process mounts to serve
// metrics in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
