package txn

import (
	"sync"
	"time"

	"dinokv/pkg/list"
)

// Reaper walks a FIFO of open transactions from its head, closing out any
// that are retirable, and stops at the first one that is neither closed
// nor expired — transactions are pushed in open order, so anything past
// that point is guaranteed younger still-live (spec §5, background
// reaper). The FIFO itself is the teacher's doubly linked list, reused
// here (generic over the tracked transaction type) as a registry instead
// of a pager eviction queue.
type Reaper[K any, V any] struct {
	mu       sync.Mutex
	fifo     *list.List[*Transaction[K, V]]
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReaper constructs a reaper that sweeps every interval.
func NewReaper[K any, V any](interval time.Duration) *Reaper[K, V] {
	return &Reaper[K, V]{
		fifo:     list.NewList[*Transaction[K, V]](),
		interval: interval,
	}
}

// Track registers a newly opened transaction at the tail of the FIFO.
func (r *Reaper[K, V]) Track(t *Transaction[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fifo.PushTail(t)
}

// Sweep performs one pass: pop retirable transactions from the head,
// stopping at the first live, unexpired one.
func (r *Reaper[K, V]) Sweep() (reaped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for link := r.fifo.PeekHead(); link != nil; link = r.fifo.PeekHead() {
		if !link.GetValue().Retirable() {
			break
		}
		link.PopSelf()
		reaped++
	}
	return reaped
}

// Run starts the periodic sweep loop in a new goroutine. Stop must be
// called to release it.
func (r *Reaper[K, V]) Run() {
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	ticker := time.NewTicker(r.interval)
	go func() {
		defer close(r.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop signals the sweep loop to exit and waits for it to do so.
func (r *Reaper[K, V]) Stop() {
	if r.stopCh == nil {
		return
	}
	close(r.stopCh)
	<-r.doneCh
}
