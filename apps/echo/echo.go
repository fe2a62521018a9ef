// Package echo is a minimal demo task: it subscribes to one event
// type and re-enqueues a reply event carrying the same payload under
// a different type, exercising the syscall gate's Subscribe/Enqueue
// path end to end.
package echo

import (
	"github.com/nexus5x-dev/device-google-contexthub/internal/syscallgate"
)

// Task implements interfaces.Task. RequestEvt is the event type it
// listens for; ReplyEvt is the event type it re-enqueues under.
type Task struct {
	Gate       *syscallgate.Gate
	RequestEvt uint32
	ReplyEvt   uint32

	tid uint32
}

// New returns an echo task bound to gate, listening on requestEvt and
// replying on replyEvt.
func New(gate *syscallgate.Gate, requestEvt, replyEvt uint32) *Task {
	return &Task{Gate: gate, RequestEvt: requestEvt, ReplyEvt: replyEvt}
}

func (t *Task) Init(tid uint32) error {
	t.tid = tid
	if !t.Gate.Subscribe(tid, t.RequestEvt) {
		return errInitFailed
	}
	return nil
}

func (t *Task) Unload() {
	t.Gate.Unsubscribe(t.tid, t.RequestEvt)
}

func (t *Task) Handle(evtType uint32, evtData any) {
	if evtType != t.RequestEvt {
		return
	}
	t.Gate.Enqueue(t.ReplyEvt, evtData, nil, false)
}
