package echo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus5x-dev/device-google-contexthub/internal/evtqueue"
	"github.com/nexus5x-dev/device-google-contexthub/internal/slab"
	"github.com/nexus5x-dev/device-google-contexthub/internal/syscallgate"
)

func newGate() *syscallgate.Gate {
	return &syscallgate.Gate{
		Internal: evtqueue.New(8),
		External: evtqueue.New(8),
		Pool:     slab.NewPool(),
	}
}

func TestInitSubscribesToRequestEvent(t *testing.T) {
	gate := newGate()
	task := New(gate, 0x10000, 0x10001)

	require.NoError(t, task.Init(1))

	ev, ok := gate.Internal.Dequeue(false)
	require.True(t, ok)
	action := ev.Data.(*slab.DeferredAction)
	assert.Equal(t, uint32(1), action.Tid)
	assert.Equal(t, uint32(0x10000), action.EvtType)
}

func TestHandleReEnqueuesUnderReplyType(t *testing.T) {
	gate := newGate()
	task := New(gate, 0x10000, 0x10001)
	require.NoError(t, task.Init(1))
	_, _ = gate.Internal.Dequeue(false) // drain the subscribe event

	task.Handle(0x10000, "ping")

	ev, ok := gate.Internal.Dequeue(false)
	require.True(t, ok)
	assert.Equal(t, uint32(0x10001), ev.Type)
	assert.Equal(t, "ping", ev.Data)
}

func TestHandleIgnoresUnrelatedEventTypes(t *testing.T) {
	gate := newGate()
	task := New(gate, 0x10000, 0x10001)
	require.NoError(t, task.Init(1))
	_, _ = gate.Internal.Dequeue(false)

	task.Handle(0x20000, "noise")

	_, ok := gate.Internal.Dequeue(false)
	assert.False(t, ok, "unrelated event types must not be re-enqueued")
}
