// Package cursor implements stateful ordered iteration over a pinned
// snapshot: a stack of (page, index) positions that is pushed down on
// descent and popped back up when a leaf is exhausted.
package cursor

import (
	"dinokv/pkg/entry"
	"dinokv/pkg/page"
	"dinokv/pkg/txn"
)

// ParentPos records a position within one page on the path from root to
// the cursor's current leaf entry.
type ParentPos[K any, V any] struct {
	Page  page.Page[K, V]
	Index int
}

// Cursor walks the entries of a pinned transaction's snapshot in
// ascending key order, starting from either the beginning of the key
// space or a specific key.
type Cursor[K any, V any] struct {
	txn     *txn.Transaction[K, V]
	cmp     page.Comparator[K]
	stack   []ParentPos[K, V]
	leaf    *page.Leaf[K, V]
	leafPos int
	done    bool
}

// New opens a cursor positioned before the first entry of the
// transaction's snapshot.
func New[K any, V any](t *txn.Transaction[K, V], cmp page.Comparator[K]) *Cursor[K, V] {
	c := &Cursor[K, V]{txn: t, cmp: cmp}
	c.descendLeftmost(t.Root())
	return c
}

// AtKey opens a cursor positioned at the first entry whose key is >= key
// (spec §4.3, browse(key)).
func AtKey[K any, V any](t *txn.Transaction[K, V], cmp page.Comparator[K], key K) *Cursor[K, V] {
	c := &Cursor[K, V]{txn: t, cmp: cmp}
	c.descendToKey(t.Root(), key)
	return c
}

// descendLeftmost pushes the path to the leftmost leaf reachable from p
// and positions the cursor at its first entry.
func (c *Cursor[K, V]) descendLeftmost(p page.Page[K, V]) {
	for {
		switch pg := p.(type) {
		case *page.Leaf[K, V]:
			c.leaf = pg
			c.leafPos = 0
			c.advanceIfLeafEmpty()
			return
		case *page.Node[K, V]:
			c.stack = append(c.stack, ParentPos[K, V]{Page: pg, Index: 0})
			p = pg.ChildAt(0)
		default:
			c.done = true
			return
		}
	}
}

// descendToKey pushes the path to the leaf that would hold key and
// positions the cursor at the first entry >= key.
func (c *Cursor[K, V]) descendToKey(p page.Page[K, V], key K) {
	for {
		switch pg := p.(type) {
		case *page.Leaf[K, V]:
			c.leaf = pg
			c.leafPos = pg.BrowsePosition(key, c.cmp)
			if c.leafPos >= pg.NumElems() {
				// key lies past this leaf's last entry: the first entry
				// >= key is the first one of the next leaf.
				c.advanceToNextLeaf()
			}
			return
		case *page.Node[K, V]:
			idx := pg.FindChildIndex(key, c.cmp)
			c.stack = append(c.stack, ParentPos[K, V]{Page: pg, Index: idx})
			p = pg.ChildAt(idx)
		default:
			c.done = true
			return
		}
	}
}

// advanceIfLeafEmpty handles the degenerate all-empty-tree case where the
// root leaf itself has zero elements.
func (c *Cursor[K, V]) advanceIfLeafEmpty() {
	if c.leaf.NumElems() == 0 {
		c.advanceToNextLeaf()
	}
}

// advanceToNextLeaf walks back up the parent stack looking for the next
// sibling subtree to descend into, re-establishing leftmost descent from
// there. Sets done when the stack is exhausted.
func (c *Cursor[K, V]) advanceToNextLeaf() {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		node := top.Page.(*page.Node[K, V])
		nextIdx := top.Index + 1
		if nextIdx >= node.NumChildren() {
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		top.Index = nextIdx
		c.descendLeftmostFrom(node.ChildAt(nextIdx))
		if !c.done && c.leaf.NumElems() > 0 {
			return
		}
	}
	c.done = true
	c.leaf = nil
}

// descendLeftmostFrom is like descendLeftmost but does not itself recurse
// into advanceToNextLeaf on an empty leaf, to avoid re-entering the
// parent-stack walk while a frame above is already mid-walk.
func (c *Cursor[K, V]) descendLeftmostFrom(p page.Page[K, V]) {
	for {
		switch pg := p.(type) {
		case *page.Leaf[K, V]:
			c.leaf = pg
			c.leafPos = 0
			return
		case *page.Node[K, V]:
			c.stack = append(c.stack, ParentPos[K, V]{Page: pg, Index: 0})
			p = pg.ChildAt(0)
		default:
			c.done = true
			return
		}
	}
}

// HasNext reports whether another entry remains.
func (c *Cursor[K, V]) HasNext() bool {
	return !c.done && c.leaf != nil && c.leafPos < c.leaf.NumElems()
}

// Next returns the current entry and advances the cursor.
func (c *Cursor[K, V]) Next() (entry.Tuple[K, V], bool) {
	if !c.HasNext() {
		var zero entry.Tuple[K, V]
		return zero, false
	}
	t := c.leaf.TupleAt(c.leafPos)
	c.leafPos++
	if c.leafPos >= c.leaf.NumElems() {
		c.advanceToNextLeaf()
	}
	return t, true
}

// Close releases the cursor's reference to its pinned transaction. A
// cursor must not be used after Close.
func (c *Cursor[K, V]) Close() {
	c.txn.Close()
	c.leaf = nil
	c.stack = nil
	c.done = true
}
