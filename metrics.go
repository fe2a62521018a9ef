package seos

import (
	"sync/atomic"

	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
)

// Metrics tracks operational counters for a running kernel instance.
// No latency histogram is carried: this kernel has no I/O-latency
// concept, only event counts.
type Metrics struct {
	TasksLoaded         atomic.Uint64
	EventsInternal      atomic.Uint64
	EventsExternal      atomic.Uint64
	Broadcasts          atomic.Uint64
	HandlerInvocations  atomic.Uint64
	QueueFullDrops      atomic.Uint64
	SlabExhaustions     atomic.Uint64
	DeferredInvocations atomic.Uint64
}

// NewMetrics returns a zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// MetricsSnapshot is a point-in-time copy of Metrics suitable for
// export without holding a reference to the live counters.
type MetricsSnapshot struct {
	TasksLoaded         uint64
	EventsInternal      uint64
	EventsExternal      uint64
	Broadcasts          uint64
	HandlerInvocations  uint64
	QueueFullDrops      uint64
	SlabExhaustions     uint64
	DeferredInvocations uint64
}

// Snapshot reads all counters into a MetricsSnapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TasksLoaded:         m.TasksLoaded.Load(),
		EventsInternal:      m.EventsInternal.Load(),
		EventsExternal:      m.EventsExternal.Load(),
		Broadcasts:          m.Broadcasts.Load(),
		HandlerInvocations:  m.HandlerInvocations.Load(),
		QueueFullDrops:      m.QueueFullDrops.Load(),
		SlabExhaustions:     m.SlabExhaustions.Load(),
		DeferredInvocations: m.DeferredInvocations.Load(),
	}
}

// MetricsObserver implements interfaces.Observer by recording into a
// *Metrics, bridging the kernel's internal lifecycle hooks to whatever
// external exporter (e.g. internal/promexport) reads the snapshot.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver returns an Observer that records into m.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTaskLoaded(tid uint32, appID uint64) {
	o.metrics.TasksLoaded.Add(1)
}

func (o *MetricsObserver) ObserveBroadcast(evtType uint32, recipients int) {
	o.metrics.Broadcasts.Add(1)
	o.metrics.HandlerInvocations.Add(uint64(recipients))
}

func (o *MetricsObserver) ObserveQueueFull(external bool) {
	o.metrics.QueueFullDrops.Add(1)
}

func (o *MetricsObserver) ObserveSlabExhausted() {
	o.metrics.SlabExhaustions.Add(1)
}

func (o *MetricsObserver) ObserveEventDispatched(external bool) {
	if external {
		o.metrics.EventsExternal.Add(1)
	} else {
		o.metrics.EventsInternal.Add(1)
	}
}

func (o *MetricsObserver) ObserveDeferredInvocation() {
	o.metrics.DeferredInvocations.Add(1)
}

var _ interfaces.Observer = (*MetricsObserver)(nil)
