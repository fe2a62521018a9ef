// Package constants is the single source of sizing and threshold
// values for the kernel. Mirrors the #define constants of the original
// firmware (MAX_TASKS, queue capacities, slab size) at fixed values
// appropriate for a demo sensor hub.
package constants

const (
	// MaxTasks bounds the fixed task table.
	MaxTasks = 16

	// MaxEmbeddedEvtSubs is the inline small-buffer capacity of a
	// task's subscription set before it is promoted to a heap slice.
	MaxEmbeddedEvtSubs = 8

	// InternalQueueCapacity is the bound on the self-originated event
	// queue drained by the main dispatch loop.
	InternalQueueCapacity = 512

	// ExternalQueueCapacity is the bound on the host-originated event
	// queue, drained non-blockingly by a host-interface collaborator.
	ExternalQueueCapacity = 256

	// SlabSize is the fixed number of deferred-action records the
	// kernel can have outstanding at once.
	SlabSize = 32
)

// Reserved internal event types, all below FirstUserEvent. Never
// broadcast to tasks; consumed entirely by the internal event handler.
const (
	EvtSubscribe        uint32 = 0
	EvtUnsubscribe       uint32 = 1
	EvtDeferredCallback uint32 = 2
	EvtPrivateEvt       uint32 = 3

	// FirstUserEvent is the reserved-event/user-event boundary. Event
	// types at or above this value are broadcast to subscribers;
	// types below it are consumed by the internal handler.
	FirstUserEvent uint32 = 0x10000

	// EvtAppStart is the first user event broadcast once bring-up
	// completes and the main loop is about to begin draining events.
	EvtAppStart uint32 = FirstUserEvent
)

// Application header markers, distinguishing the region a candidate
// header was discovered in.
const (
	MarkerInternal uint32 = 0xC0FFEE01
	MarkerValid    uint32 = 0xC0FFEE02
)

// HeaderMagic is the fixed byte sequence every valid application
// header must begin with.
var HeaderMagic = [4]byte{'S', 'E', 'O', 'S'}

// HeaderVersion is the only application header version this kernel
// accepts.
const HeaderVersion uint32 = 1
