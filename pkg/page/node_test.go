package page

import "testing"

func leafOf(keys ...int64) *Leaf[int64, string] {
	l := NewEmptyLeaf[int64, string](0, 0)
	cfg := testConfig(100)
	var cur *Leaf[int64, string] = l
	for i, k := range keys {
		cur = cur.Insert(cfg, uint64(i+1), k, "v").Page.(*Leaf[int64, string])
	}
	return cur
}

func TestNodeChildIndexRoutesExactMatchRight(t *testing.T) {
	n := &Node[int64, string]{seps: []int64{10, 20}, children: []Page[int64, string]{leafOf(1), leafOf(10), leafOf(20)}}
	if idx := n.childIndex(10, int64Cmp); idx != 1 {
		t.Fatalf("exact separator match should route to the child right of it, got %d", idx)
	}
	if idx := n.childIndex(5, int64Cmp); idx != 0 {
		t.Fatalf("key below first separator should route to child 0, got %d", idx)
	}
	if idx := n.childIndex(25, int64Cmp); idx != 2 {
		t.Fatalf("key above last separator should route to the last child, got %d", idx)
	}
}

func TestSelectSiblingPrefersMoreElementsTieBreaksLeft(t *testing.T) {
	children := []Page[int64, string]{leafOf(1), leafOf(4), leafOf(5, 6)}
	if got := selectSibling(children, 1); got != 2 {
		t.Fatalf("expected to pick the richer right sibling (2 elems), got %d", got)
	}

	tied := []Page[int64, string]{leafOf(1, 2), leafOf(3), leafOf(4, 5)}
	if got := selectSibling(tied, 1); got != 0 {
		t.Fatalf("expected a tie to break toward the previous sibling, got %d", got)
	}
}

func TestNodeInsertPropagatesSplitAndRebuildsSeparators(t *testing.T) {
	cfg := testConfig(2)
	root := NewRootNode[int64, string](0, 0, 10, leafOf(1), leafOf(10, 11))

	out := root.Insert(cfg, 1, 12, "v")
	if out.Kind != Overflowed && out.Kind != Modified {
		t.Fatalf("unexpected insert outcome kind")
	}
	var resultRoot Page[int64, string]
	if out.Kind == Modified {
		resultRoot = out.Page
	} else {
		resultRoot = NewRootNode[int64, string](2, 99, out.Pivot, out.Left, out.Right)
	}
	if resultRoot.NumElems() == 0 && resultRoot.(*Node[int64, string]).NumChildren() == 0 {
		t.Fatalf("resulting root must have at least one child")
	}
}

func TestNodeDeleteMergesWhenSiblingAtMinFill(t *testing.T) {
	cfg := testConfig(4) // minFill = 2
	left := leafOf(1, 2)
	right := leafOf(10, 11)
	root := NewRootNode[int64, string](0, 0, 10, left, right)

	out := root.Delete(cfg, 1, 1)
	if out.Kind != Removed {
		t.Fatalf("expected Removed")
	}
	merged, ok := out.Page.(*Node[int64, string])
	if !ok {
		t.Fatalf("expected result to still be a Node wrapping the merged leaf")
	}
	if merged.NumChildren() != 1 {
		t.Fatalf("merging the only two children should leave exactly one child, got %d", merged.NumChildren())
	}
	soleLeaf := merged.ChildAt(0).(*Leaf[int64, string])
	if soleLeaf.NumElems() != 3 {
		t.Fatalf("expected merged leaf to hold 3 remaining keys (2,10,11), got %d", soleLeaf.NumElems())
	}
}

func TestNodeDeleteBorrowsWhenSiblingHasSurplus(t *testing.T) {
	cfg := testConfig(6) // minFill = 3
	left := leafOf(1, 2, 3)
	right := leafOf(10, 11, 12, 13)
	root := NewRootNode[int64, string](0, 0, 10, left, right)

	out := root.Delete(cfg, 1, 1)
	if out.Kind != Removed {
		t.Fatalf("expected Removed")
	}
	n := out.Page.(*Node[int64, string])
	if n.NumChildren() != 2 {
		t.Fatalf("borrowing must keep both children, got %d", n.NumChildren())
	}
	l := n.ChildAt(0).(*Leaf[int64, string])
	r := n.ChildAt(1).(*Leaf[int64, string])
	if l.NumElems() < MinFill(cfg.PageSize) {
		t.Fatalf("borrowing must bring the poor child back up to minFill, got %d elems", l.NumElems())
	}
	if r.NumElems() < MinFill(cfg.PageSize) {
		t.Fatalf("the rich child must remain at or above minFill after lending one, got %d elems", r.NumElems())
	}
}

func TestNodeDeleteNotPresent(t *testing.T) {
	cfg := testConfig(4)
	root := NewRootNode[int64, string](0, 0, 10, leafOf(1, 2), leafOf(10, 11))
	out := root.Delete(cfg, 1, 999)
	if out.Kind != NotPresent {
		t.Fatalf("expected NotPresent for an absent key")
	}
}
