// internal/poller/subscriptions.go
package poller

import (
	"slices"
	"sync"
)

// Subscriptions tracks who is observing which catalogue items.
// The poller only runs while at least one subscription is active.
type Subscriptions struct {
	mu   sync.Mutex
	next int
	subs map[int][]int
	wake chan struct{}
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		subs: make(map[int][]int),
		wake: make(chan struct{}, 1),
	}
}

// Subscribe registers a listener observing indices. No indices means the
// listener wants everything. The returned func removes the listener.
func (s *Subscriptions) Subscribe(indices ...int) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = slices.Clone(indices)

	if len(s.subs) == 1 {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
		})
	}
}

// Active reports whether anyone is subscribed.
func (s *Subscriptions) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) > 0
}

// Observed returns the sorted union of observed indices. It is nil when
// any listener wants everything, so SweepFor picks a full sweep.
func (s *Subscriptions) Observed() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []int
	for _, idx := range s.subs {
		if len(idx) == 0 {
			return nil
		}
		out = append(out, idx...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Wake is signalled when the first listener subscribes.
func (s *Subscriptions) Wake() <-chan struct{} { return s.wake }
