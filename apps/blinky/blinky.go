// Package blinky is a minimal demo task that toggles a boolean LED
// state at a fixed interval, entirely through OS.MAIN.EVENTQ.FUNC_DEFER:
// a background ticker goroutine is the only thing that runs outside
// the dispatch context, and its sole job is to ask the kernel to defer
// one toggle callback per tick. The toggle itself always executes on
// the single dispatch context, same as every other task handler.
package blinky

import (
	"sync/atomic"
	"time"

	"github.com/nexus5x-dev/device-google-contexthub/internal/syscallgate"
)

// Task implements interfaces.Task.
type Task struct {
	Gate     *syscallgate.Gate
	Interval time.Duration

	tid   uint32
	state atomic.Bool
	stop  chan struct{}
}

// New returns a blinky task bound to gate, toggling every interval.
func New(gate *syscallgate.Gate, interval time.Duration) *Task {
	return &Task{Gate: gate, Interval: interval}
}

func (t *Task) Init(tid uint32) error {
	t.tid = tid
	t.stop = make(chan struct{})
	go t.tick()
	return nil
}

func (t *Task) Unload() {
	close(t.stop)
}

// Handle is unused: blinky does not subscribe to any broadcast event.
func (t *Task) Handle(evtType uint32, evtData any) {}

// State reports the current LED state.
func (t *Task) State() bool {
	return t.state.Load()
}

func (t *Task) tick() {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.Gate.FuncDefer(func(any) { t.toggle() }, nil)
		}
	}
}

// toggle runs on the dispatch context via the deferred-callback path,
// so it never races with Handle or another task's toggle.
func (t *Task) toggle() {
	t.state.Store(!t.state.Load())
}
