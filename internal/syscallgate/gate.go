// Package syscallgate is the syscall surface the core exports to
// tasks (spec §6). Per the redesign note, this is not a variadic
// thunk over a type-erased argument pack: each syscall is a
// strongly-typed method, and Dispatch offers a tagged-variant table
// for callers that want opcode-keyed routing instead of calling the
// methods directly.
package syscallgate

import (
	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/evtqueue"
	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
	"github.com/nexus5x-dev/device-google-contexthub/internal/logging"
	"github.com/nexus5x-dev/device-google-contexthub/internal/slab"
)

// Gate wires the four OS.MAIN.EVENTQ.* operations and OS.MAIN.LOG.LOGV
// to the kernel's internal/external queues and deferred-action slab.
type Gate struct {
	Internal *evtqueue.Queue
	External *evtqueue.Queue
	Pool     *slab.Pool
	Logger   *logging.Logger
	Observer interfaces.Observer
}

// freeToPool is the generic free hook every internally-enqueued
// deferred action carries: the main loop calls it after processing
// regardless of whether handling succeeded, so the slab record is
// reclaimed exactly once.
func (g *Gate) freeToPool(data any) {
	if action, ok := data.(*slab.DeferredAction); ok {
		g.Pool.Free(action)
	}
}

// Subscribe implements OS.MAIN.EVENTQ.SUBSCRIBE(tid, evtType) -> bool.
func (g *Gate) Subscribe(tid uint32, evtType uint32) bool {
	return g.enqueueSubOrUnsub(constants.EvtSubscribe, tid, evtType)
}

// Unsubscribe implements OS.MAIN.EVENTQ.UNSUBSCRIBE(tid, evtType) -> bool.
func (g *Gate) Unsubscribe(tid uint32, evtType uint32) bool {
	return g.enqueueSubOrUnsub(constants.EvtUnsubscribe, tid, evtType)
}

func (g *Gate) enqueueSubOrUnsub(kind uint32, tid uint32, evtType uint32) bool {
	action, ok := g.Pool.Alloc()
	if !ok {
		if g.Observer != nil {
			g.Observer.ObserveSlabExhausted()
		}
		return false
	}
	action.Kind = slab.ActionSubOrUnsub
	action.Tid = tid
	action.EvtType = evtType

	if !g.Internal.Enqueue(evtqueue.Event{Type: kind, Data: action, Free: g.freeToPool}) {
		g.Pool.Free(action)
		if g.Observer != nil {
			g.Observer.ObserveQueueFull(false)
		}
		return false
	}
	return true
}

// Enqueue implements OS.MAIN.EVENTQ.ENQUEUE(evtType, evtData, freeFn,
// external) -> bool. User event types (>= FirstUserEvent) go directly
// onto the target queue with no slab involvement: only reserved
// internal event types route through a deferred-action record.
func (g *Gate) Enqueue(evtType uint32, data any, free func(any), external bool) bool {
	q := g.Internal
	if external {
		q = g.External
	}
	ok := q.Enqueue(evtqueue.Event{Type: evtType, Data: data, Free: free})
	if !ok && g.Observer != nil {
		g.Observer.ObserveQueueFull(external)
	}
	return ok
}

// FuncDefer implements OS.MAIN.EVENTQ.FUNC_DEFER(userCbk, userData) ->
// bool. The user callback is wrapped in a deferred-action record; a
// single generic trampoline (the main loop's internal handler)
// invokes it and the record is freed after, so each accepted defer
// corresponds to exactly one invocation.
func (g *Gate) FuncDefer(callback func(cookie any), cookie any) bool {
	action, ok := g.Pool.Alloc()
	if !ok {
		if g.Observer != nil {
			g.Observer.ObserveSlabExhausted()
		}
		return false
	}
	action.Kind = slab.ActionDeferredCallback
	action.Callback = callback
	action.Cookie = cookie

	if !g.Internal.Enqueue(evtqueue.Event{Type: constants.EvtDeferredCallback, Data: action, Free: g.freeToPool}) {
		g.Pool.Free(action)
		if g.Observer != nil {
			g.Observer.ObserveQueueFull(false)
		}
		return false
	}
	return true
}

// EnqueuePrivate implements the private-event path described in
// spec §3 (EVT_PRIVATE_EVT): deliver (innerType, innerData) to a
// specific tid, freeing innerData afterward whether or not the tid
// was found.
func (g *Gate) EnqueuePrivate(innerType uint32, innerData any, innerFree func(any), toTid uint32) bool {
	action, ok := g.Pool.Alloc()
	if !ok {
		if g.Observer != nil {
			g.Observer.ObserveSlabExhausted()
		}
		return false
	}
	action.Kind = slab.ActionPrivateEvt
	action.InnerType = innerType
	action.InnerData = innerData
	action.InnerFree = innerFree
	action.ToTid = toTid

	if !g.Internal.Enqueue(evtqueue.Event{Type: constants.EvtPrivateEvt, Data: action, Free: g.freeToPool}) {
		g.Pool.Free(action)
		if g.Observer != nil {
			g.Observer.ObserveQueueFull(false)
		}
		return false
	}
	return true
}

// Logv implements OS.MAIN.LOG.LOGV(level, formatStr, argPack).
func (g *Gate) Logv(level logging.LogLevel, format string, args ...any) {
	g.Logger.Logv(level, format, args...)
}

// Opcode keys the tagged-variant dispatch table below.
type Opcode int

const (
	OpSubscribe Opcode = iota
	OpUnsubscribe
	OpEnqueue
	OpFuncDefer
	OpLogv
)

// Request is a tagged union of arguments for one syscall invocation.
// Exactly the fields relevant to Op are populated.
type Request struct {
	Op Opcode

	Tid     uint32
	EvtType uint32
	Data    any
	Free    func(any)
	External bool

	Callback func(any)
	Cookie   any

	Level  logging.LogLevel
	Format string
	Args   []any
}

// Response carries the boolean result syscalls return. Logv has no
// return value; Dispatch always reports Ok=true for OpLogv.
type Response struct {
	Ok bool
}

// Dispatch routes a Request to the matching Gate method, providing
// the opcode-keyed tagged-variant surface the redesign note asks for
// on top of the strongly-typed methods above.
func (g *Gate) Dispatch(req Request) Response {
	switch req.Op {
	case OpSubscribe:
		return Response{Ok: g.Subscribe(req.Tid, req.EvtType)}
	case OpUnsubscribe:
		return Response{Ok: g.Unsubscribe(req.Tid, req.EvtType)}
	case OpEnqueue:
		return Response{Ok: g.Enqueue(req.EvtType, req.Data, req.Free, req.External)}
	case OpFuncDefer:
		return Response{Ok: g.FuncDefer(req.Callback, req.Cookie)}
	case OpLogv:
		g.Logv(req.Level, req.Format, req.Args...)
		return Response{Ok: true}
	default:
		return Response{Ok: false}
	}
}
