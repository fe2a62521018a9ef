// Package dispatch implements the internal event handler and the
// main dispatch loop, the two halves of spec §4.E/§4.F.
package dispatch

import (
	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/slab"
	"github.com/nexus5x-dev/device-google-contexthub/internal/tasktable"
)

// HandleInternal decodes a reserved event type (< FirstUserEvent) and
// applies its effect to the task table. Called only from the main
// dispatch context. The outer event's generic free hook still runs
// afterward in the caller, regardless of which branch below executes
// or whether a lookup failed.
func HandleInternal(table *tasktable.Table, evtType uint32, action *slab.DeferredAction) {
	switch evtType {
	case constants.EvtSubscribe:
		if task, ok := table.ByTid(action.Tid); ok {
			task.Subs.Insert(action.EvtType)
		}
		// Unknown tid: the task may have failed init. Silently dropped.

	case constants.EvtUnsubscribe:
		if task, ok := table.ByTid(action.Tid); ok {
			task.Subs.Remove(action.EvtType)
		}

	case constants.EvtDeferredCallback:
		if action.Callback != nil {
			action.Callback(action.Cookie)
		}

	case constants.EvtPrivateEvt:
		if task, ok := table.ByTid(action.ToTid); ok {
			task.App.Handle(action.InnerType, action.InnerData)
		}
		// Whether or not the task was found, the inner payload must
		// not leak on a misrouted private event.
		if action.InnerFree != nil {
			action.InnerFree(action.InnerData)
		}
	}
}
