package evtqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New(4)
	require.True(t, q.Enqueue(Event{Type: 1}))
	require.True(t, q.Enqueue(Event{Type: 2}))

	e, ok := q.Dequeue(false)
	require.True(t, ok)
	assert.Equal(t, uint32(1), e.Type)

	e, ok = q.Dequeue(false)
	require.True(t, ok)
	assert.Equal(t, uint32(2), e.Type)
}

func TestEnqueueFailsOnFullWithoutFreeing(t *testing.T) {
	q := New(2)
	require.True(t, q.Enqueue(Event{Type: 1}))
	require.True(t, q.Enqueue(Event{Type: 2}))

	freed := false
	ok := q.Enqueue(Event{Type: 3, Free: func(any) { freed = true }})
	assert.False(t, ok)
	assert.False(t, freed, "kernel must not free the payload on a failed enqueue")
}

func TestNonBlockingDequeueOnEmpty(t *testing.T) {
	q := New(2)
	_, ok := q.Dequeue(false)
	assert.False(t, ok)
}

func TestBlockingDequeueWaitsForEnqueue(t *testing.T) {
	q := New(2)
	var wg sync.WaitGroup
	wg.Add(1)

	var got Event
	var ok bool
	go func() {
		defer wg.Done()
		got, ok = q.Dequeue(true)
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, q.Enqueue(Event{Type: 42}))
	wg.Wait()

	require.True(t, ok)
	assert.Equal(t, uint32(42), got.Type)
}

func TestCloseUnblocksWaiter(t *testing.T) {
	q := New(2)
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(true)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock a waiting Dequeue")
	}
}

func TestFIFOOrderAcrossWrap(t *testing.T) {
	q := New(3)
	require.True(t, q.Enqueue(Event{Type: 1}))
	require.True(t, q.Enqueue(Event{Type: 2}))
	_, _ = q.Dequeue(false)
	require.True(t, q.Enqueue(Event{Type: 3}))
	require.True(t, q.Enqueue(Event{Type: 4}))

	var got []uint32
	for {
		e, ok := q.Dequeue(false)
		if !ok {
			break
		}
		got = append(got, e.Type)
	}
	assert.Equal(t, []uint32{2, 3, 4}, got)
}
