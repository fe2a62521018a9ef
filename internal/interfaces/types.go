// Package interfaces holds the collaborator contracts the kernel core
// demands from everything around it, kept separate from the root
// package to avoid import cycles with the internal packages that
// implement dispatch.
package interfaces

import "github.com/nexus5x-dev/device-google-contexthub/internal/apphdr"

// Task is the per-application behavior the CPU/app collaborator hosts
// on behalf of a loaded application. One Task exists per registered
// task-table slot once Init has succeeded.
type Task interface {
	// Init is called once, after load, with the tid the kernel
	// assigned. Returning an error causes the slot to be compacted
	// out of the task table and Unload to be called.
	Init(tid uint32) error

	// Unload releases any resources the task holds. Called on init
	// failure; never called otherwise (tasks live until reboot).
	Unload()

	// Handle delivers a broadcast user event to the task. Runs on the
	// main dispatch context; must return promptly.
	Handle(evtType uint32, evtData any)
}

// PlatformLoader is the external collaborator that turns an
// application header into a running Task. The kernel never inspects
// platform-specific load records; it only asks the loader to produce
// a Task and calls that Task's methods.
type PlatformLoader interface {
	// LoadInternal loads an application discovered in the internal
	// (compiled-in) application region.
	LoadInternal(hdr apphdr.Header) (Task, error)

	// LoadExternal loads an application discovered in the external
	// (host-supplied) application region.
	LoadExternal(hdr apphdr.Header) (Task, error)
}

// Logger is the minimal logging surface kernel components depend on,
// satisfied by *logging.Logger without importing its concrete type
// everywhere.
type Logger interface {
	Printf(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Observer receives kernel lifecycle and dispatch events for optional
// external metrics export. Implementations must be safe to call from
// the main dispatch context; they must not block.
type Observer interface {
	ObserveTaskLoaded(tid uint32, appID uint64)
	ObserveBroadcast(evtType uint32, recipients int)
	ObserveQueueFull(external bool)
	ObserveSlabExhausted()
	// ObserveEventDispatched fires once per event drained off a queue,
	// external reporting which queue (internal vs external) it came
	// from.
	ObserveEventDispatched(external bool)
	// ObserveDeferredInvocation fires once per EVT_DEFERRED_CALLBACK
	// event the dispatch loop handles, after HandleInternal runs the
	// callback (an event with a nil callback is counted too).
	ObserveDeferredInvocation()
}

// NoOpObserver discards every observation.
type NoOpObserver struct{}

func (NoOpObserver) ObserveTaskLoaded(uint32, uint64) {}
func (NoOpObserver) ObserveBroadcast(uint32, int)     {}
func (NoOpObserver) ObserveQueueFull(bool)            {}
func (NoOpObserver) ObserveSlabExhausted()             {}
func (NoOpObserver) ObserveEventDispatched(bool)       {}
func (NoOpObserver) ObserveDeferredInvocation()        {}

var _ Observer = NoOpObserver{}
