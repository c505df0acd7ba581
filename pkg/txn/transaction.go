// Package txn implements the MVCC read-transaction protocol: a snapshot
// handle pinning one published root revision, and a background reaper
// that retires expired, closed transactions from the front of a FIFO.
package txn

import (
	"sync/atomic"
	"time"

	"dinokv/pkg/page"

	"github.com/google/uuid"
)

// Transaction pins one published root revision for the lifetime of a
// read. Readers never block the writer and the writer never blocks
// readers: the only shared state a Transaction touches is the Page it
// was handed at open time, which is immutable once published.
type Transaction[K any, V any] struct {
	id        uuid.UUID
	root      page.Page[K, V]
	revision  uint64
	createdAt time.Time
	timeout   time.Duration
	closed    atomic.Bool
}

// New pins root as the snapshot this transaction reads through.
func New[K any, V any](root page.Page[K, V], timeout time.Duration) *Transaction[K, V] {
	return &Transaction[K, V]{
		id:        uuid.New(),
		root:      root,
		revision:  root.Revision(),
		createdAt: time.Now(),
		timeout:   timeout,
	}
}

// ID returns the transaction's diagnostic identifier.
func (t *Transaction[K, V]) ID() uuid.UUID { return t.id }

// Root returns the pinned root page this transaction reads through.
func (t *Transaction[K, V]) Root() page.Page[K, V] { return t.root }

// Revision returns the pinned root's revision number.
func (t *Transaction[K, V]) Revision() uint64 { return t.revision }

// Close marks the transaction closed. Safe to call more than once.
func (t *Transaction[K, V]) Close() {
	t.closed.Store(true)
}

// Closed reports whether Close has been called.
func (t *Transaction[K, V]) Closed() bool {
	return t.closed.Load()
}

// Expired reports whether the transaction has outlived its read timeout,
// regardless of whether Close was ever called — the reaper treats both as
// grounds for retirement.
func (t *Transaction[K, V]) Expired() bool {
	return t.timeout > 0 && time.Since(t.createdAt) > t.timeout
}

// Retirable reports whether the reaper may drop this transaction.
func (t *Transaction[K, V]) Retirable() bool {
	return t.Closed() || t.Expired()
}
