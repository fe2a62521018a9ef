// Package tasktable owns the fixed task table and per-task
// subscription sets. Per the spec's lock-free design note, this
// table is mutated only from the main dispatch context: every other
// actor submits a deferred action through the internal queue instead
// of touching the table directly, which is what makes the core safe
// to invoke from interrupt context without locks.
package tasktable

import (
	"github.com/nexus5x-dev/device-google-contexthub/internal/apphdr"
	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
)

// Task is one occupied slot in the table. A zero Tid marks a slot as
// unused. The Tid is stable for the task's lifetime; the slot it
// occupies is not (slots compact on failed init).
type Task struct {
	Tid    uint32
	Header apphdr.Header
	App    interfaces.Task
	Subs   *SubscriptionSet
}

// Table is the fixed MAX_TASKS array of task descriptors plus the
// monotonic tid counter.
type Table struct {
	slots   [constants.MaxTasks]Task
	n       int // count of occupied slots, always a prefix of slots[:n]
	nextTid uint32
	seenApp map[uint64]bool
}

// NewTable returns an empty table with the tid counter starting at 1.
func NewTable() *Table {
	return &Table{
		nextTid: 1,
		seenApp: make(map[uint64]bool),
	}
}

// Load registers a candidate header as a new task-table slot and
// loads it via the given PlatformLoader, assigning a fresh tid.
//
// The loaded task is stored in the slot this call appends
// (t.slots[t.n] before n increments), not a stale index captured
// earlier: the original
// firmware's load loop dereferenced mTasks[i] before i had been
// advanced past the init phase, so the first slot was loaded
// repeatedly instead of each newly-appended one. That is not
// replicated here.
func (t *Table) Load(hdr apphdr.Header, loader interfaces.PlatformLoader, kind apphdr.LoaderKind) (uint32, bool) {
	if t.n >= len(t.slots) {
		return 0, false
	}
	if t.seenApp[hdr.AppID] {
		return 0, false // duplicate application id: logged by the caller, skipped here
	}

	var app interfaces.Task
	var err error
	switch kind {
	case apphdr.LoaderInternal:
		app, err = loader.LoadInternal(hdr)
	default:
		app, err = loader.LoadExternal(hdr)
	}
	if err != nil {
		return 0, false
	}

	slot := t.n
	tid := t.nextTid
	t.nextTid++
	t.slots[slot] = Task{
		Tid:    tid,
		Header: hdr,
		App:    app,
		Subs:   NewSubscriptionSet(),
	}
	t.n++
	t.seenApp[hdr.AppID] = true
	return tid, true
}

// Init runs the per-task init phase over every currently loaded slot.
// Failures compact the table by swapping the last valid slot into the
// failed position, per spec §4.C / §4.H, and unload the failed task.
func (t *Table) Init() {
	i := 0
	for i < t.n {
		task := &t.slots[i]
		if err := task.App.Init(task.Tid); err != nil {
			task.App.Unload()
			delete(t.seenApp, task.Header.AppID)
			last := t.n - 1
			t.slots[i] = t.slots[last]
			t.slots[last] = Task{}
			t.n--
			continue // re-examine slot i, now holding the swapped-in task
		}
		i++
	}
}

// ByTid returns the task with the given tid, if loaded and present.
func (t *Table) ByTid(tid uint32) (*Task, bool) {
	for i := 0; i < t.n; i++ {
		if t.slots[i].Tid == tid {
			return &t.slots[i], true
		}
	}
	return nil, false
}

// Slots returns the currently occupied slots, in table order. The
// returned slice aliases internal storage and must not be retained
// past the next table mutation.
func (t *Table) Slots() []Task {
	return t.slots[:t.n]
}

// Len reports the number of occupied slots.
func (t *Table) Len() int {
	return t.n
}
