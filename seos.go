// Package seos is the single-threaded, cooperative event-dispatch
// kernel: a fixed task table, a pair of bounded event queues, a
// lock-free deferred-action slab, and the main dispatch loop that
// ties them together. Tasks never preempt one another; all shared
// state is mutated only from the dispatch context.
package seos

import (
	"context"
	"fmt"

	"github.com/nexus5x-dev/device-google-contexthub/internal/apphdr"
	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/dispatch"
	"github.com/nexus5x-dev/device-google-contexthub/internal/evtqueue"
	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
	"github.com/nexus5x-dev/device-google-contexthub/internal/logging"
	"github.com/nexus5x-dev/device-google-contexthub/internal/slab"
	"github.com/nexus5x-dev/device-google-contexthub/internal/syscallgate"
	"github.com/nexus5x-dev/device-google-contexthub/internal/tasktable"
)

// Config supplies the collaborators a Kernel needs to bring itself
// up: where applications come from, how they get loaded, and where
// diagnostics/metrics go.
type Config struct {
	// Registry enumerates the application headers to register during
	// bring-up, in the order they should be loaded.
	Registry apphdr.Registry

	// Loader turns a discovered header into a running Task.
	Loader interfaces.PlatformLoader

	// Logger receives bring-up and runtime diagnostics. Defaults to
	// logging.Default() if nil.
	Logger *logging.Logger

	// Observer receives lifecycle/dispatch counters. Defaults to a
	// no-op observer if nil.
	Observer interfaces.Observer

	// CPUAffinity, if non-empty, pins the dispatch loop's OS thread to
	// CPUAffinity[0], realizing the kernel's single-processor
	// assumption on a hosted build.
	CPUAffinity []int
}

// Kernel owns every piece of kernel state for one bring-up: the event
// queues, the deferred-action slab, the task table, the syscall gate,
// and the dispatch loop. A Kernel is built once via Bootstrap and run
// once via Run; it is not restartable.
type Kernel struct {
	cfg Config

	internal *evtqueue.Queue
	external *evtqueue.Queue
	pool     *slab.Pool
	table    *tasktable.Table
	gate     *syscallgate.Gate
	loop     *dispatch.Loop
	logger   *logging.Logger
	observer interfaces.Observer
}

// New constructs a Kernel from cfg without bringing it up. Call
// Bootstrap before Run.
func New(cfg Config) *Kernel {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = interfaces.NoOpObserver{}
	}
	return &Kernel{cfg: cfg, logger: logger, observer: observer}
}

// Bootstrap runs the bring-up ordering: disable interrupts, timer
// init, core init (queues + slab), sensors init, syscall table init
// and export, host-interface request, AP interface init, enable
// interrupts, start tasks, broadcast EVT_APP_START. Grounded on
// osMain()/osInit() in the original; several hardware-specific stages
// (sensors, host-interface request, AP interface) have no hosted
// counterpart and are logged as bring-up checkpoints only, preserving
// the ordering contract without pretending to drive real silicon.
func (k *Kernel) Bootstrap(ctx context.Context) error {
	k.logger.Info("interrupts disabled")
	k.logger.Info("timer initialized")

	k.internal = evtqueue.New(constants.InternalQueueCapacity)
	k.external = evtqueue.New(constants.ExternalQueueCapacity)
	k.pool = slab.NewPool()
	k.logger.Info("core initialized", "internal_cap", constants.InternalQueueCapacity, "external_cap", constants.ExternalQueueCapacity, "slab_size", constants.SlabSize)

	k.logger.Info("sensors initialized")

	k.table = tasktable.NewTable()
	k.gate = &syscallgate.Gate{
		Internal: k.internal,
		External: k.external,
		Pool:     k.pool,
		Logger:   k.logger,
		Observer: k.observer,
	}
	k.logger.Info("syscall table initialized and exported")

	k.logger.Info("host interface request issued")
	k.logger.Info("AP interface initialized")
	k.logger.Info("interrupts enabled")

	if err := k.startTasks(); err != nil {
		return WrapError("Bootstrap", err)
	}

	k.loop = &dispatch.Loop{
		Internal:    k.internal,
		Table:       k.table,
		Logger:      k.logger,
		Observer:    k.observer,
		CPUAffinity: k.cfg.CPUAffinity,
	}

	if !k.internal.Enqueue(evtqueue.Event{Type: constants.EvtAppStart}) {
		return NewError("Bootstrap", ErrCodeQueueFull, "failed to enqueue EVT_APP_START")
	}
	return nil
}

// startTasks walks the configured registry, loads every header into
// the task table, and runs the per-task init phase. Grounded on
// osStartTasks(): register every discovered header first, then run
// init over the whole table so a failing task can be compacted out
// without disturbing tids already assigned to its neighbors.
func (k *Kernel) startTasks() error {
	if k.cfg.Registry == nil {
		return nil
	}
	k.logger.Info("registering tasks")
	for {
		hdr, kind, ok := k.cfg.Registry.Next()
		if !ok {
			break
		}
		wantMarker := constants.MarkerInternal
		if kind == apphdr.LoaderExternal {
			wantMarker = constants.MarkerValid
		}
		if !hdr.Valid(wantMarker) {
			k.logger.Warnf("skipping invalid application header appId=%d", hdr.AppID)
			continue
		}
		tid, ok := k.table.Load(hdr, k.cfg.Loader, kind)
		if !ok {
			k.logger.Warnf("failed to register application appId=%d (table full or duplicate)", hdr.AppID)
			continue
		}
		k.observer.ObserveTaskLoaded(tid, hdr.AppID)
	}

	k.logger.Info("starting tasks")
	k.table.Init()
	k.logger.Infof("%d task(s) running", k.table.Len())
	return nil
}

// Run enters the main dispatch loop. Blocks until ctx is cancelled.
// Bootstrap must have succeeded first.
func (k *Kernel) Run(ctx context.Context) error {
	if k.loop == nil {
		return NewError("Run", ErrCodeBringupFailed, "Bootstrap must succeed before Run")
	}
	k.loop.Run(ctx)
	return nil
}

// Shutdown closes the internal and external queues, unblocking a
// goroutine parked in Run's dispatch loop. Safe to call more than
// once, after Run has returned or concurrently with it via ctx
// cancellation (Run already closes the internal queue on cancel;
// Shutdown is for callers that want to stop the kernel without a
// Context in hand).
func (k *Kernel) Shutdown() {
	if k.internal != nil {
		k.internal.Close()
	}
	if k.external != nil {
		k.external.Close()
	}
}

// Gate returns the syscall surface tasks (or their host-side stand-ins
// in this implementation) use to interact with the kernel. Valid only
// after Bootstrap.
func (k *Kernel) Gate() *syscallgate.Gate {
	return k.gate
}

// Table returns the task table. Valid only after Bootstrap.
func (k *Kernel) Table() *tasktable.Table {
	return k.table
}

// DequeueExternal removes one event from the external queue, the one
// path a host-interface transport uses to drain host-originated
// events out of the kernel. Valid only after Bootstrap.
func (k *Kernel) DequeueExternal(blocking bool) (evtqueue.Event, bool) {
	ev, ok := k.external.Dequeue(blocking)
	if ok && k.observer != nil {
		k.observer.ObserveEventDispatched(true)
	}
	return ev, ok
}

// Abort is the kernel's fatal bring-up path: log the reason and hang,
// matching dispatch.Abort's hardware-watchdog contract.
func (k *Kernel) Abort(reason string) {
	dispatch.Abort(k.logger, reason)
}

func init() {
	// Init-time sanity: the reserved event types must stay below
	// FirstUserEvent, otherwise the dispatch loop's routing check is
	// meaningless.
	if constants.EvtPrivateEvt >= constants.FirstUserEvent {
		panic(fmt.Sprintf("seos: reserved event type %d collides with FirstUserEvent %d", constants.EvtPrivateEvt, constants.FirstUserEvent))
	}
}
