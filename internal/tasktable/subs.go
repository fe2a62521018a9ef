package tasktable

import "github.com/nexus5x-dev/device-google-contexthub/internal/constants"

// SubscriptionSet is a per-task set of subscribed event types with a
// small-buffer optimization: the overwhelming majority of tasks
// subscribe to a handful of events, so the inline buffer avoids heap
// allocation and fragmentation for the common case.
type SubscriptionSet struct {
	inline [constants.MaxEmbeddedEvtSubs]uint32
	heap   []uint32 // non-nil once promoted
	count  int
}

// NewSubscriptionSet returns an empty set backed by the inline buffer.
func NewSubscriptionSet() *SubscriptionSet {
	return &SubscriptionSet{}
}

// backing returns the slice currently holding entries, whichever
// storage is active.
func (s *SubscriptionSet) backing() []uint32 {
	if s.heap != nil {
		return s.heap
	}
	return s.inline[:]
}

func (s *SubscriptionSet) capacity() int {
	if s.heap != nil {
		return cap(s.heap)
	}
	return len(s.inline)
}

// Contains reports whether evt is in the set.
func (s *SubscriptionSet) Contains(evt uint32) bool {
	b := s.backing()
	for i := 0; i < s.count; i++ {
		if b[i] == evt {
			return true
		}
	}
	return false
}

// Insert adds evt to the set. Duplicate inserts are a no-op. If the
// set is full, it grows to (cap*3+1)/2 (at least cap+1); if growth
// fails (cannot happen with a Go slice append short of OOM, but the
// grow path is structured so a future bounded-allocator swap can
// return false here) the insert is silently dropped, matching the
// documented behavior that the caller already observed success when
// it enqueued the subscription intent.
func (s *SubscriptionSet) Insert(evt uint32) {
	if s.Contains(evt) {
		return
	}
	if s.count == s.capacity() {
		if !s.grow() {
			return
		}
	}
	if s.heap != nil {
		s.heap = s.heap[:s.count+1]
	}
	b := s.backing()
	b[s.count] = evt
	s.count++
}

func (s *SubscriptionSet) grow() bool {
	oldCap := s.capacity()
	newCap := (oldCap*3 + 1) / 2
	if newCap <= oldCap {
		newCap = oldCap + 1
	}
	newBacking := make([]uint32, s.count, newCap)
	copy(newBacking, s.backing()[:s.count])
	s.heap = newBacking
	return true
}

// Remove deletes evt from the set if present, by swapping it with the
// last element (order is not significant). No-op if absent.
func (s *SubscriptionSet) Remove(evt uint32) {
	b := s.backing()
	for i := 0; i < s.count; i++ {
		if b[i] == evt {
			b[i] = b[s.count-1]
			s.count--
			if s.heap != nil {
				s.heap = s.heap[:s.count]
			}
			return
		}
	}
}

// Len reports the number of subscribed event types.
func (s *SubscriptionSet) Len() int {
	return s.count
}

// Capacity reports the current backing capacity (inline size until
// first promotion, then the heap slice's capacity).
func (s *SubscriptionSet) Capacity() int {
	return s.capacity()
}
