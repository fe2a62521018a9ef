package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/evtqueue"
	"github.com/nexus5x-dev/device-google-contexthub/internal/tasktable"
)

func TestLoopBroadcastsToSubscribedTaskOnce(t *testing.T) {
	table, tid := newTableWithOneTask(t)
	task, _ := table.ByTid(tid)
	task.Subs.Insert(0x10000)
	task.Subs.Insert(0x10000) // duplicate entry must not cause a double delivery

	q := evtqueue.New(8)
	loop := &Loop{Internal: q, Table: table}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	freed := false
	require.True(t, q.Enqueue(evtqueue.Event{Type: 0x10000, Data: "payload", Free: func(any) { freed = true }}))

	require.Eventually(t, func() bool {
		rt := task.App.(*recordingTask)
		return len(rt.handled) == 1
	}, time.Second, 5*time.Millisecond)

	rt := task.App.(*recordingTask)
	assert.Equal(t, []uint32{0x10000}, rt.handled, "task must receive a given broadcast at most once")
	assert.Eventually(t, func() bool { return freed }, time.Second, 5*time.Millisecond)
}

func TestLoopUnsubscribedTaskNotDelivered(t *testing.T) {
	table, _ := newTableWithOneTask(t)

	q := evtqueue.New(8)
	loop := &Loop{Internal: q, Table: table}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.True(t, q.Enqueue(evtqueue.Event{Type: 0x10000, Data: nil}))
	require.True(t, q.Enqueue(evtqueue.Event{Type: constants.EvtAppStart, Data: nil}))

	time.Sleep(50 * time.Millisecond)
	for _, slot := range table.Slots() {
		rt := slot.App.(*recordingTask)
		assert.Empty(t, rt.handled)
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	table := tasktable.NewTable()
	q := evtqueue.New(4)
	loop := &Loop{Internal: q, Table: table}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after context cancellation")
	}
}

