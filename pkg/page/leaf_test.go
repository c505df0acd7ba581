package page

import "testing"

func int64Cmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func testConfig(pageSize int) *Config[int64] {
	var next uint64
	return &Config[int64]{
		PageSize: pageSize,
		Cmp:      int64Cmp,
		NextRecordID: func() uint64 {
			next++
			return next
		},
	}
}

func TestLeafInsertStaysModifiedUntilFull(t *testing.T) {
	cfg := testConfig(4)
	leaf := NewEmptyLeaf[int64, string](0, 0)

	var current Page[int64, string] = leaf
	for i, k := range []int64{10, 20, 30, 40} {
		l := current.(*Leaf[int64, string])
		outcome := l.Insert(cfg, uint64(i+1), k, "v")
		if outcome.Kind != Modified {
			t.Fatalf("insert %d: expected Modified, got Overflowed", k)
		}
		current = outcome.Page
	}
	if current.NumElems() != 4 {
		t.Fatalf("expected 4 elems, got %d", current.NumElems())
	}
}

func TestLeafInsertSplitsWhenFull(t *testing.T) {
	cfg := testConfig(4)
	leaf := &Leaf[int64, string]{revision: 0, recordID: 0}
	var current *Leaf[int64, string] = leaf
	for i, k := range []int64{10, 20, 30, 40} {
		outcome := current.Insert(cfg, uint64(i+1), k, "v")
		current = outcome.Page.(*Leaf[int64, string])
	}

	outcome := current.Insert(cfg, 5, 25, "new")
	if outcome.Kind != Overflowed {
		t.Fatalf("expected Overflowed on 5th insert into pageSize-4 leaf")
	}
	total := outcome.Left.NumElems() + outcome.Right.NumElems()
	if total != 5 {
		t.Fatalf("expected split halves to total 5 elements, got %d", total)
	}
	if outcome.Pivot != outcome.Right.FirstKey() {
		t.Fatalf("pivot must equal the right half's leftmost key")
	}
	checkAscending(append(append([]int64(nil), outcome.Left.(*Leaf[int64, string]).keys...), outcome.Right.(*Leaf[int64, string]).keys...), int64Cmp)
}

func TestLeafInsertReplacesExistingKey(t *testing.T) {
	cfg := testConfig(8)
	leaf := NewEmptyLeaf[int64, string](0, 0)
	out1 := leaf.Insert(cfg, 1, 5, "first")
	l1 := out1.Page.(*Leaf[int64, string])
	out2 := l1.Insert(cfg, 2, 5, "second")
	if out2.Previous == nil || *out2.Previous != "first" {
		t.Fatalf("expected previous value 'first', got %v", out2.Previous)
	}
	l2 := out2.Page.(*Leaf[int64, string])
	if l2.NumElems() != 1 {
		t.Fatalf("replacing an existing key must not grow the leaf")
	}
}

func TestLeafDeleteReportsNotPresent(t *testing.T) {
	cfg := testConfig(8)
	leaf := NewEmptyLeaf[int64, string](0, 0)
	out := leaf.Insert(cfg, 1, 5, "v")
	l := out.Page.(*Leaf[int64, string])

	del := l.Delete(cfg, 2, 999)
	if del.Kind != NotPresent {
		t.Fatalf("expected NotPresent deleting an absent key")
	}
}

func TestLeafDeleteRemovesAndReportsNewLeftMost(t *testing.T) {
	cfg := testConfig(8)
	leaf := NewEmptyLeaf[int64, string](0, 0)
	var l *Leaf[int64, string] = leaf
	for i, k := range []int64{1, 2, 3} {
		out := l.Insert(cfg, uint64(i+1), k, "v")
		l = out.Page.(*Leaf[int64, string])
	}
	del := l.Delete(cfg, 10, 1)
	if del.Kind != Removed {
		t.Fatalf("expected Removed")
	}
	if del.NewLeftMostKey == nil || *del.NewLeftMostKey != 2 {
		t.Fatalf("expected new leftmost key 2, got %v", del.NewLeftMostKey)
	}
}

func TestLeafDeleteValueOnlyMatchesExactValue(t *testing.T) {
	cfg := testConfig(8)
	leaf := NewEmptyLeaf[int64, string](0, 0)
	out := leaf.Insert(cfg, 1, 5, "expected")
	l := out.Page.(*Leaf[int64, string])
	equal := func(a, b string) bool { return a == b }

	wrongVal := l.DeleteValue(cfg, 2, 5, "unexpected", equal)
	if wrongVal.Kind != NotPresent {
		t.Fatalf("deleting with the wrong value must not remove the entry")
	}

	rightVal := l.DeleteValue(cfg, 3, 5, "expected", equal)
	if rightVal.Kind != Removed {
		t.Fatalf("deleting with the matching value must remove the entry")
	}
}

func TestMergeLeaves(t *testing.T) {
	cfg := testConfig(8)
	left := NewEmptyLeaf[int64, string](0, 0)
	l1 := left.Insert(cfg, 1, 1, "a").Page.(*Leaf[int64, string])
	right := NewEmptyLeaf[int64, string](0, 0)
	r1 := right.Insert(cfg, 2, 2, "b").Page.(*Leaf[int64, string])

	merged := mergeLeaves(cfg, 3, l1, r1)
	if merged.NumElems() != 2 {
		t.Fatalf("expected merged leaf to hold 2 elements, got %d", merged.NumElems())
	}
	checkAscending(merged.keys, int64Cmp)
}

func TestBorrowLeavesFromRichRight(t *testing.T) {
	cfg := testConfig(8)
	var poor *Leaf[int64, string] = NewEmptyLeaf[int64, string](0, 0)
	poor = poor.Insert(cfg, 1, 1, "a").Page.(*Leaf[int64, string])

	var rich *Leaf[int64, string] = NewEmptyLeaf[int64, string](0, 0)
	for i, k := range []int64{10, 20, 30} {
		rich = rich.Insert(cfg, uint64(i+2), k, "x").Page.(*Leaf[int64, string])
	}

	newLeft, newRight, sep := borrowLeaves(cfg, 9, true, poor, rich)
	if newLeft.NumElems() != 2 || newRight.NumElems() != 2 {
		t.Fatalf("expected a single element to rotate across, got %d/%d", newLeft.NumElems(), newRight.NumElems())
	}
	if sep != newRight.FirstKey() {
		t.Fatalf("separator must equal the new right half's leftmost key")
	}
}
