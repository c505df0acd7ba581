// Package page implements the immutable, copy-on-write B+Tree pages the
// engine builds revisions out of: Leaf and Node. Every mutating method
// here returns brand new pages; nothing in this package ever mutates a
// page already published as part of a revision.
package page

import "github.com/bits-and-blooms/bitset"

// Comparator imposes the total order over K that findPos and every
// structural page operation relies on.
type Comparator[K any] func(a, b K) int

// Page is the interface shared by Leaf and Node. Structural recursion
// (insert, delete, get, browse) type-switches on the concrete type because
// leaves and internal nodes rebalance differently; this interface only
// covers what callers outside the package need.
type Page[K any, V any] interface {
	Revision() uint64
	RecordID() uint64
	NumElems() int
	IsLeaf() bool
	FirstKey() K
}

// IDGen hands out strictly increasing 64-bit identifiers. The engine owns
// one for revisions and one for recordIds; pages never generate their own.
type IDGen func() uint64

// Config bundles what every structural operation needs but no single page
// owns: the configured page size, the key comparator, and the recordId
// generator.
type Config[K any] struct {
	PageSize     int
	Cmp          Comparator[K]
	NextRecordID IDGen
}

// MinFill returns ceil(pageSize/2), the minimum live-element count a
// non-root page must retain after any structural operation (invariant 4).
func MinFill(pageSize int) int {
	return (pageSize + 1) / 2
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// findPos performs the dual-encoded binary search: a non-negative result
// is an insertion index (key absent, i is the position of the first key
// greater than key); a negative result -(matchIndex+1) signals an exact
// match at matchIndex.
func findPos[K any](keys []K, key K, cmp Comparator[K]) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := cmp(keys[mid], key); {
		case c == 0:
			return -(mid + 1)
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo
}

// isMatch decodes a findPos result, reporting whether it denotes an exact
// match and, if so, the matched index.
func isMatch(pos int) (index int, ok bool) {
	if pos < 0 {
		return -(pos + 1), true
	}
	return pos, false
}

// browsePosition adapts a findPos result into a cursor starting position:
// the index of the key itself if present, otherwise the first index whose
// key is greater (identical to the raw, non-negative findPos result).
func browsePosition(pos int) int {
	if idx, ok := isMatch(pos); ok {
		return idx
	}
	return pos
}

// assertPartition is a debug invariant check run from both Leaf and Node
// split: it panics unless the [0,mid) / [mid,total) halves of a virtual
// pageSize+1-length overflow sequence partition every index exactly once,
// catching off-by-one split-boundary bugs before they corrupt a revision.
func assertPartition(total, mid int) {
	if mid <= 0 || mid >= total {
		panic("page: split midpoint out of range")
	}
	marked := bitset.New(uint(total))
	for i := 0; i < mid; i++ {
		marked.Set(uint(i))
	}
	for i := mid; i < total; i++ {
		if marked.Test(uint(i)) {
			panic("page: split partition overlap")
		}
		marked.Set(uint(i))
	}
	if marked.Count() != uint(total) {
		panic("page: split partition incomplete")
	}
}

// checkAscending is a debug invariant check (spec §3 invariant 1): it
// panics if keys are not in strict ascending order under cmp.
func checkAscending[K any](keys []K, cmp Comparator[K]) {
	for i := 1; i < len(keys); i++ {
		if cmp(keys[i-1], keys[i]) >= 0 {
			panic("page: keys out of ascending order")
		}
	}
}

func insertAt[T any](s []T, idx int, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:idx]...)
	out = append(out, v)
	out = append(out, s[idx:]...)
	return out
}

func removeAt[T any](s []T, idx int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out
}
