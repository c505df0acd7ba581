package journal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"dinokv/pkg/list"
	"dinokv/pkg/serializer"

	"golang.org/x/sync/semaphore"
)

// Writer is the background journal writer: a single-producer/single-
// consumer queue (the teacher's list.List under a mutex, bounded by a
// semaphore.Weighted so a slow disk applies backpressure to the writer
// lock holder rather than growing without limit) drained by Run into the
// journal file, with a parallel plain-text audit line per record.
type Writer[K any, V any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue *list.List[Record[K, V]]
	sem   *semaphore.Weighted

	file  io.Writer
	synco interface{ Sync() error }
	audit io.Writer

	ks serializer.Serializer[K]
	vs serializer.Serializer[V]
}

// New constructs a Writer appending encoded records to file (an
// *os.File, for Sync support) and human-readable audit lines to audit.
// capacity bounds how many unconsumed records may be enqueued at once.
func New[K any, V any](file *os.File, audit io.Writer, ks serializer.Serializer[K], vs serializer.Serializer[V], capacity int64) *Writer[K, V] {
	w := &Writer[K, V]{
		queue: list.NewList[Record[K, V]](),
		sem:   semaphore.NewWeighted(capacity),
		file:  file,
		synco: file,
		audit: audit,
		ks:    ks,
		vs:    vs,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Enqueue blocks until queue capacity is available, then appends r in
// order. Called by the engine under the writer lock immediately after
// publishing a new root.
func (w *Writer[K, V]) Enqueue(ctx context.Context, r Record[K, V]) error {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("journal: enqueue: %w", err)
	}
	w.mu.Lock()
	w.queue.PushTail(r)
	w.mu.Unlock()
	w.cond.Signal()
	return nil
}

// Run drains the queue until a poison-pill is dequeued, encoding and
// fsyncing each record in turn. It suspends on an empty queue (spec §5
// suspension points) and returns nil once the pill is consumed — any
// records enqueued ahead of it are guaranteed drained first because the
// queue is strictly FIFO and single-producer.
func (w *Writer[K, V]) Run() error {
	for {
		rec, ok := w.dequeue()
		if !ok {
			return nil
		}
		if rec.IsPoison() {
			return nil
		}
		if err := Encode(w.file, w.ks, w.vs, rec); err != nil {
			fmt.Fprintf(os.Stderr, "journal: encode failed, record lost: %v\n", err)
			continue
		}
		if err := w.synco.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "journal: fsync failed: %v\n", err)
		}
		w.writeAudit(rec)
	}
}

func (w *Writer[K, V]) dequeue() (Record[K, V], bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.queue.PeekHead() == nil {
		w.cond.Wait()
	}
	link := w.queue.PeekHead()
	rec := link.GetValue()
	link.PopSelf()
	w.sem.Release(1)
	return rec, true
}

// Close enqueues the shutdown sentinel so Run drains remaining work and
// returns; it does not itself wait for Run to exit (the caller, typically
// an errgroup.Group running Run, does that).
func (w *Writer[K, V]) Close(ctx context.Context) error {
	return w.Enqueue(ctx, poisonPill[K, V]())
}

func (w *Writer[K, V]) writeAudit(rec Record[K, V]) {
	tag := "ADD"
	if rec.Tag == TagDeletion {
		tag = "DEL"
	}
	fmt.Fprintf(w.audit, "%s %s key=%v\n", time.Now().UTC().Format(time.RFC3339Nano), tag, rec.Key)
}
