package page

// Node is an internal B+Tree page: up to Config.PageSize separator keys
// and PageSize+1 child page references. Invariant 2 (spec §3): every key
// in children[i] is < seps[i], and every key in children[len(seps)] is >=
// seps[len(seps)-1].
type Node[K any, V any] struct {
	revision uint64
	recordID uint64
	seps     []K
	children []Page[K, V]
}

// NewRootNode constructs the internal node published as the new root when
// the previous root split (spec §4.1: "allocate a fresh internal node of
// two children with the promoted pivot").
func NewRootNode[K any, V any](revision, recordID uint64, pivot K, left, right Page[K, V]) *Node[K, V] {
	return &Node[K, V]{revision: revision, recordID: recordID, seps: []K{pivot}, children: []Page[K, V]{left, right}}
}

func (n *Node[K, V]) Revision() uint64 { return n.revision }
func (n *Node[K, V]) RecordID() uint64 { return n.recordID }
func (n *Node[K, V]) NumElems() int    { return len(n.seps) }
func (n *Node[K, V]) IsLeaf() bool     { return false }

// FirstKey descends to the leftmost leaf reachable from this node.
func (n *Node[K, V]) FirstKey() K {
	return firstKeyOf(n.children[0])
}

func firstKeyOf[K any, V any](p Page[K, V]) K {
	return p.FirstKey()
}

// NumChildren returns the number of child pointers.
func (n *Node[K, V]) NumChildren() int { return len(n.children) }

// ChildAt returns the child at index i.
func (n *Node[K, V]) ChildAt(i int) Page[K, V] { return n.children[i] }

// SepAt returns the separator key at index i.
func (n *Node[K, V]) SepAt(i int) K { return n.seps[i] }

// SoleChild returns the only remaining child of a node with zero
// separators — used by the engine to collapse the root after a merge
// (spec §4.1: "If after a merge the root is an internal node with zero
// separators, collapse").
func (n *Node[K, V]) SoleChild() Page[K, V] { return n.children[0] }

// childIndex resolves which child a key routes to: treating an exact
// separator match as "go right of the separator" per spec §4.1.
func (n *Node[K, V]) childIndex(key K, cmp Comparator[K]) int {
	pos := findPos(n.seps, key, cmp)
	if idx, ok := isMatch(pos); ok {
		return idx + 1
	}
	return pos
}

// FindChildIndex is childIndex exported for the cursor package.
func (n *Node[K, V]) FindChildIndex(key K, cmp Comparator[K]) int {
	return n.childIndex(key, cmp)
}

// Get descends to the child responsible for key and recurses.
func (n *Node[K, V]) Get(key K, cmp Comparator[K]) (V, bool) {
	switch child := n.children[n.childIndex(key, cmp)].(type) {
	case *Leaf[K, V]:
		return child.Get(key, cmp)
	case *Node[K, V]:
		return child.Get(key, cmp)
	}
	var zero V
	return zero, false
}

// Insert descends to the appropriate child, incorporating a split if the
// child overflowed, splitting this node in turn if that overflows it
// (spec §4.1, Node.insert).
func (n *Node[K, V]) Insert(cfg *Config[K], revision uint64, key K, value V) InsertOutcome[K, V] {
	idx := n.childIndex(key, cfg.Cmp)
	var childOutcome InsertOutcome[K, V]
	switch child := n.children[idx].(type) {
	case *Leaf[K, V]:
		childOutcome = child.Insert(cfg, revision, key, value)
	case *Node[K, V]:
		childOutcome = child.Insert(cfg, revision, key, value)
	}

	if childOutcome.Kind == Modified {
		newChildren := append([]Page[K, V](nil), n.children...)
		newChildren[idx] = childOutcome.Page
		newNode := &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: append([]K(nil), n.seps...), children: newChildren}
		return InsertOutcome[K, V]{Kind: Modified, Page: newNode, Previous: childOutcome.Previous}
	}

	newSeps := insertAt(n.seps, idx, childOutcome.Pivot)
	newChildren := insertChildAt(n.children, idx, childOutcome.Left, childOutcome.Right)
	if len(newSeps) <= cfg.PageSize {
		checkAscending(newSeps, cfg.Cmp)
		return InsertOutcome[K, V]{Kind: Modified, Page: &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newSeps, children: newChildren}}
	}

	// This node overflowed too: split its separators and promote the
	// middle one, the ceil((pageSize+1)/2)-th counting from 1
	// (SPEC_FULL.md Open Question 1). The pivot moves up and is kept in
	// neither half, so each half holds pageSize/2 separators.
	total := len(newSeps)
	mid := ceilDiv(total, 2)
	assertPartition(total, mid)

	left := &Node[K, V]{
		revision: revision, recordID: cfg.NextRecordID(),
		seps: append([]K(nil), newSeps[:mid-1]...), children: append([]Page[K, V](nil), newChildren[:mid]...),
	}
	right := &Node[K, V]{
		revision: revision, recordID: cfg.NextRecordID(),
		seps: append([]K(nil), newSeps[mid:]...), children: append([]Page[K, V](nil), newChildren[mid:]...),
	}
	return InsertOutcome[K, V]{Kind: Overflowed, Pivot: newSeps[mid-1], Left: left, Right: right}
}

// Delete descends to the appropriate child, rebalancing it against a
// sibling if it underflowed (spec §4.1, Node.delete).
func (n *Node[K, V]) Delete(cfg *Config[K], revision uint64, key K) DeleteOutcome[K, V] {
	return n.deleteWith(cfg, revision, key, func(l *Leaf[K, V]) DeleteOutcome[K, V] {
		return l.Delete(cfg, revision, key)
	})
}

// DeleteValue descends to the appropriate child, removing key only where
// its stored value equals value at the leaf level (SPEC_FULL.md Open
// Question 2); the rebalancing shape above the leaf is identical either
// way, so both variants share deleteWith.
func (n *Node[K, V]) DeleteValue(cfg *Config[K], revision uint64, key K, value V, equal func(a, b V) bool) DeleteOutcome[K, V] {
	return n.deleteWith(cfg, revision, key, func(l *Leaf[K, V]) DeleteOutcome[K, V] {
		return l.DeleteValue(cfg, revision, key, value, equal)
	})
}

func (n *Node[K, V]) deleteWith(cfg *Config[K], revision uint64, key K, leafDelete func(*Leaf[K, V]) DeleteOutcome[K, V]) DeleteOutcome[K, V] {
	idx := n.childIndex(key, cfg.Cmp)
	var childOutcome DeleteOutcome[K, V]
	switch child := n.children[idx].(type) {
	case *Leaf[K, V]:
		childOutcome = leafDelete(child)
	case *Node[K, V]:
		childOutcome = child.deleteWith(cfg, revision, key, leafDelete)
	}
	if childOutcome.Kind == NotPresent {
		return DeleteOutcome[K, V]{Kind: NotPresent}
	}

	newSeps := append([]K(nil), n.seps...)
	newChildren := append([]Page[K, V](nil), n.children...)
	newChildren[idx] = childOutcome.Page
	if childOutcome.NewLeftMostKey != nil && idx > 0 {
		newSeps[idx-1] = *childOutcome.NewLeftMostKey
	}

	if childOutcome.Page.NumElems() >= MinFill(cfg.PageSize) || len(newChildren) <= 1 {
		result := &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newSeps, children: newChildren}
		return DeleteOutcome[K, V]{Kind: Removed, Page: result, RemovedTuple: childOutcome.RemovedTuple, NewLeftMostKey: leftMostKeyIfAffected(idx, result)}
	}

	siblingIdx := selectSibling(newChildren, idx)
	sibling := newChildren[siblingIdx]
	left, right := idx, siblingIdx
	poorIsLeft := idx < siblingIdx
	if !poorIsLeft {
		left, right = siblingIdx, idx
	}
	sepIdx := left // the separator between children[left] and children[right] lives at seps[left]

	if sibling.NumElems() > MinFill(cfg.PageSize) {
		oldSep := newSeps[sepIdx]
		newLeft, newRight, newSep := borrowAcross(cfg, revision, poorIsLeft, newChildren[left], newChildren[right], oldSep)
		newChildren[left] = newLeft
		newChildren[right] = newRight
		newSeps[sepIdx] = newSep
		result := &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newSeps, children: newChildren}
		return DeleteOutcome[K, V]{Kind: Removed, Page: result, RemovedTuple: childOutcome.RemovedTuple, NewLeftMostKey: leftMostKeyIfAffected(idx, result)}
	}

	merged := mergeAcross(cfg, revision, newChildren[left], newChildren[right], newSeps[sepIdx])
	mergedSeps := removeAt(newSeps, sepIdx)
	mergedChildren := removeAt(newChildren, right)
	mergedChildren[left] = merged
	result := &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: mergedSeps, children: mergedChildren}
	return DeleteOutcome[K, V]{Kind: Removed, Page: result, RemovedTuple: childOutcome.RemovedTuple, NewLeftMostKey: leftMostKeyIfAffected(left, result)}
}

// leftMostKeyIfAffected reports the node's new leftmost key when the
// mutated slot was index 0, so an ancestor can refresh a stale separator.
func leftMostKeyIfAffected[K any, V any](mutatedIdx int, n *Node[K, V]) *K {
	if mutatedIdx != 0 {
		return nil
	}
	k := n.FirstKey()
	return &k
}

// selectSibling picks the sibling of children[idx] to rebalance against:
// the one with strictly more elements, the previous sibling on a tie
// (spec §4.1, selectSibling / tie-break rules).
func selectSibling[K any, V any](children []Page[K, V], idx int) int {
	hasPrev := idx > 0
	hasNext := idx < len(children)-1
	switch {
	case hasPrev && hasNext:
		if children[idx+1].NumElems() > children[idx-1].NumElems() {
			return idx + 1
		}
		return idx - 1
	case hasPrev:
		return idx - 1
	default:
		return idx + 1
	}
}

// borrowAcross and mergeAcross dispatch leaf/leaf or node/node rebalancing
// — a Node always has children that are uniformly leaves or uniformly
// internal nodes (invariant 5: all leaves at the same depth), so a type
// switch on one child determines both. left/right are already ordered by
// position (left precedes right); poorIsLeft says which one underflowed.
func borrowAcross[K any, V any](cfg *Config[K], revision uint64, poorIsLeft bool, left, right Page[K, V], oldSep K) (newLeft, newRight Page[K, V], newSep K) {
	switch l := left.(type) {
	case *Leaf[K, V]:
		r := right.(*Leaf[K, V])
		var poor, rich *Leaf[K, V]
		if poorIsLeft {
			poor, rich = l, r
		} else {
			poor, rich = r, l
		}
		return borrowLeaves(cfg, revision, poorIsLeft, poor, rich)
	case *Node[K, V]:
		return borrowNodes(cfg, revision, poorIsLeft, l, right.(*Node[K, V]), oldSep)
	}
	panic("page: unreachable page kind")
}

func mergeAcross[K any, V any](cfg *Config[K], revision uint64, left, right Page[K, V], oldSep K) Page[K, V] {
	switch l := left.(type) {
	case *Leaf[K, V]:
		return mergeLeaves(cfg, revision, l, right.(*Leaf[K, V]))
	case *Node[K, V]:
		return mergeNodes(cfg, revision, l, right.(*Node[K, V]), oldSep)
	}
	panic("page: unreachable page kind")
}

// borrowNodes rotates one child through the parent separator between two
// adjacent internal nodes (spec §4.1, BorrowedResult for the node level).
// oldSep is the separator the parent currently holds between left and
// right; it becomes an interior separator of whichever side gains a child,
// and the replacement bubbles back up to the parent's slot.
func borrowNodes[K any, V any](cfg *Config[K], revision uint64, poorIsLeft bool, left, right *Node[K, V], oldSep K) (newLeft, newRight *Node[K, V], newSep K) {
	if poorIsLeft {
		// Rotate right's leftmost child into left, oldSep becomes left's
		// new trailing separator, right's former first separator bubbles up.
		newLeftSeps := append(append([]K(nil), left.seps...), oldSep)
		newLeftChildren := append(append([]Page[K, V](nil), left.children...), right.children[0])
		newRightSeps := append([]K(nil), right.seps[1:]...)
		newRightChildren := append([]Page[K, V](nil), right.children[1:]...)
		newLeft = &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newLeftSeps, children: newLeftChildren}
		newRight = &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newRightSeps, children: newRightChildren}
		return newLeft, newRight, right.seps[0]
	}
	// Rotate left's rightmost child into right, oldSep becomes right's new
	// leading separator, left's former last separator bubbles up.
	n := len(left.seps)
	newLeftSeps := append([]K(nil), left.seps[:n-1]...)
	newLeftChildren := append([]Page[K, V](nil), left.children[:len(left.children)-1]...)
	newRightSeps := append([]K{oldSep}, right.seps...)
	newRightChildren := append([]Page[K, V]{left.children[len(left.children)-1]}, right.children...)
	newLeft = &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newLeftSeps, children: newLeftChildren}
	newRight = &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: newRightSeps, children: newRightChildren}
	return newLeft, newRight, left.seps[n-1]
}

// mergeNodes combines two adjacent internal nodes, reinstating the
// separator that used to sit between them in the parent as the interior
// separator joining their former children (spec §4.1, MergedResult for the
// node level). The parent drops that separator from its own seps array
// when removing the absorbed child slot.
func mergeNodes[K any, V any](cfg *Config[K], revision uint64, left, right *Node[K, V], oldSep K) *Node[K, V] {
	seps := append(append(append([]K(nil), left.seps...), oldSep), right.seps...)
	children := append(append([]Page[K, V](nil), left.children...), right.children...)
	return &Node[K, V]{revision: revision, recordID: cfg.NextRecordID(), seps: seps, children: children}
}

func insertChildAt[K any, V any](children []Page[K, V], idx int, left, right Page[K, V]) []Page[K, V] {
	out := make([]Page[K, V], 0, len(children)+1)
	out = append(out, children[:idx]...)
	out = append(out, left, right)
	out = append(out, children[idx+1:]...)
	return out
}
