package slab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
)

func TestAllocFreeRoundTrip(t *testing.T) {
	p := NewPool()
	rec, ok := p.Alloc()
	require.True(t, ok)
	rec.Kind = ActionDeferredCallback
	rec.Tid = 7

	p.Free(rec)

	rec2, ok := p.Alloc()
	require.True(t, ok)
	assert.Equal(t, ActionSubOrUnsub, rec2.Kind) // Free then Alloc zeroes the record
	assert.Equal(t, uint32(0), rec2.Tid)
}

func TestExhaustion(t *testing.T) {
	p := NewPool()
	var recs []*DeferredAction
	for i := 0; i < constants.SlabSize; i++ {
		rec, ok := p.Alloc()
		require.True(t, ok)
		recs = append(recs, rec)
	}

	_, ok := p.Alloc()
	assert.False(t, ok, "slab should be exhausted after SlabSize allocations")

	p.Free(recs[0])
	_, ok = p.Alloc()
	assert.True(t, ok, "freeing one slot should allow exactly one more alloc")

	_, ok = p.Alloc()
	assert.False(t, ok)
}

func TestConcurrentAllocFree(t *testing.T) {
	p := NewPool()
	var wg sync.WaitGroup
	iterations := 1000
	workers := 8

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				rec, ok := p.Alloc()
				if !ok {
					continue
				}
				p.Free(rec)
			}
		}()
	}
	wg.Wait()

	var count int
	for {
		if _, ok := p.Alloc(); ok {
			count++
		} else {
			break
		}
	}
	assert.Equal(t, constants.SlabSize, count, "pool must settle back to full capacity")
}
