package entry

import "github.com/spaolacci/murmur3"

// MultiHolder is the duplicate-key ValueHolder strategy spec §9 describes:
// several values live behind one key, deduplicated by a murmur3-hashed set
// before falling back to exact equality. It is not wired into Tree[K,V] —
// the core engine only ever constructs SingleHolder — but it satisfies the
// same ValueHolder interface so a caller building a managed, duplicate-key
// variant on top of the core pages can drop it in.
type MultiHolder[V any] struct {
	values []V
	byHash map[uint64][]int
	encode func(V) []byte
	equal  func(a, b V) bool
}

// NewMultiHolder constructs an empty MultiHolder using encode to hash
// values and equal to break hash collisions.
func NewMultiHolder[V any](encode func(V) []byte, equal func(a, b V) bool) *MultiHolder[V] {
	return &MultiHolder[V]{byHash: make(map[uint64][]int), encode: encode, equal: equal}
}

// Value returns the first value inserted, satisfying the ValueHolder
// interface for callers that only need a single representative value.
func (h *MultiHolder[V]) Value() V {
	if len(h.values) == 0 {
		var zero V
		return zero
	}
	return h.values[0]
}

// Values returns every value currently held, in insertion order.
func (h *MultiHolder[V]) Values() []V {
	return append([]V(nil), h.values...)
}

// Contains reports whether v is already present, per the configured equal.
func (h *MultiHolder[V]) Contains(v V) bool {
	hash := murmur3.Sum64(h.encode(v))
	for _, idx := range h.byHash[hash] {
		if h.equal(h.values[idx], v) {
			return true
		}
	}
	return false
}

// Add returns a new holder with v present, or h unchanged if v is already
// a member — holders are copy-on-write like the pages that embed them.
func (h *MultiHolder[V]) Add(v V) *MultiHolder[V] {
	if h.Contains(v) {
		return h
	}
	next := &MultiHolder[V]{
		values: append(append([]V(nil), h.values...), v),
		byHash: cloneHashIndex(h.byHash),
		encode: h.encode,
		equal:  h.equal,
	}
	hash := murmur3.Sum64(h.encode(v))
	next.byHash[hash] = append(next.byHash[hash], len(next.values)-1)
	return next
}

// Remove returns a new holder with v absent and true, or h and false if v
// was never a member.
func (h *MultiHolder[V]) Remove(v V) (*MultiHolder[V], bool) {
	if !h.Contains(v) {
		return h, false
	}
	remaining := make([]V, 0, len(h.values)-1)
	for _, existing := range h.values {
		if h.equal(existing, v) {
			continue
		}
		remaining = append(remaining, existing)
	}
	next := NewMultiHolder[V](h.encode, h.equal)
	next.values = remaining
	for i, existing := range remaining {
		hash := murmur3.Sum64(h.encode(existing))
		next.byHash[hash] = append(next.byHash[hash], i)
	}
	return next, true
}

// Promote reports whether this holder's multiplicity has crossed threshold
// and should be materialized as a nested sub-tree instead of a flat slice.
// No sub-tree backing ships in this module (spec §1, §9: it is the
// separately-managed page-recordstore variant) — this seam exists so a
// caller can supply one without changing the ValueHolder contract.
func (h *MultiHolder[V]) Promote(threshold int) bool {
	return len(h.values) >= threshold
}

func cloneHashIndex(src map[uint64][]int) map[uint64][]int {
	dst := make(map[uint64][]int, len(src))
	for k, v := range src {
		dst[k] = append([]int(nil), v...)
	}
	return dst
}
