package page

import "dinokv/pkg/entry"

// Leaf holds up to Config.PageSize ordered keys, each paired with a
// ValueHolder, at the bottom of the tree. Leaves are where the actual
// (key, value) records live; internal separators only guide traversal.
type Leaf[K any, V any] struct {
	revision uint64
	recordID uint64
	keys     []K
	holders  []entry.ValueHolder[V]
}

// NewEmptyLeaf constructs the sole leaf of a brand new, empty tree.
func NewEmptyLeaf[K any, V any](revision uint64, recordID uint64) *Leaf[K, V] {
	return &Leaf[K, V]{revision: revision, recordID: recordID}
}

func (l *Leaf[K, V]) Revision() uint64 { return l.revision }
func (l *Leaf[K, V]) RecordID() uint64 { return l.recordID }
func (l *Leaf[K, V]) NumElems() int    { return len(l.keys) }
func (l *Leaf[K, V]) IsLeaf() bool     { return true }

// FirstKey returns the smallest key held by this leaf. Callers must not
// call it on an empty leaf (only ever possible for a root with no entries).
func (l *Leaf[K, V]) FirstKey() K { return l.keys[0] }

// TupleAt returns the (key, value) pair at position i.
func (l *Leaf[K, V]) TupleAt(i int) entry.Tuple[K, V] {
	return entry.Tuple[K, V]{Key: l.keys[i], Value: l.holders[i].Value()}
}

// KeyAt returns the key at position i.
func (l *Leaf[K, V]) KeyAt(i int) K { return l.keys[i] }

// BrowsePosition resolves the starting cursor index for browse(key): the
// index of key itself if present, else the first index whose key is
// greater.
func (l *Leaf[K, V]) BrowsePosition(key K, cmp Comparator[K]) int {
	return browsePosition(findPos(l.keys, key, cmp))
}

// Get returns the value stored under key, if present.
func (l *Leaf[K, V]) Get(key K, cmp Comparator[K]) (V, bool) {
	if idx, ok := isMatch(findPos(l.keys, key, cmp)); ok {
		return l.holders[idx].Value(), true
	}
	var zero V
	return zero, false
}

// Insert performs copy-on-write insertion, splitting this leaf if it is
// already full (spec §4.1, Leaf.insert).
func (l *Leaf[K, V]) Insert(cfg *Config[K], revision uint64, key K, value V) InsertOutcome[K, V] {
	pos := findPos(l.keys, key, cfg.Cmp)
	if idx, ok := isMatch(pos); ok {
		newKeys := append([]K(nil), l.keys...)
		newHolders := append([]entry.ValueHolder[V](nil), l.holders...)
		previous := newHolders[idx].Value()
		newHolders[idx] = entry.NewSingleHolder(value)
		newLeaf := &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newKeys, holders: newHolders}
		return InsertOutcome[K, V]{Kind: Modified, Page: newLeaf, Previous: &previous}
	}

	idx := pos
	if l.NumElems() < cfg.PageSize {
		newKeys := insertAt(l.keys, idx, key)
		newHolders := insertAt(l.holders, idx, entry.ValueHolder[V](entry.NewSingleHolder(value)))
		checkAscending(newKeys, cfg.Cmp)
		newLeaf := &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newKeys, holders: newHolders}
		return InsertOutcome[K, V]{Kind: Modified, Page: newLeaf}
	}

	// Full: build the virtual pageSize+1-length sequence and split it.
	allKeys := insertAt(l.keys, idx, key)
	allHolders := insertAt(l.holders, idx, entry.ValueHolder[V](entry.NewSingleHolder(value)))
	total := len(allKeys)
	mid := ceilDiv(total, 2)
	assertPartition(total, mid)

	left := &Leaf[K, V]{
		revision: revision, recordID: cfg.NextRecordID(),
		keys: append([]K(nil), allKeys[:mid]...), holders: append([]entry.ValueHolder[V](nil), allHolders[:mid]...),
	}
	right := &Leaf[K, V]{
		revision: revision, recordID: cfg.NextRecordID(),
		keys: append([]K(nil), allKeys[mid:]...), holders: append([]entry.ValueHolder[V](nil), allHolders[mid:]...),
	}
	return InsertOutcome[K, V]{Kind: Overflowed, Pivot: right.keys[0], Left: left, Right: right}
}

// Delete removes key if present. It never attempts to rebalance itself —
// an underfull result is reported via the returned page's NumElems and it
// is the caller's (a parent Node's, or the engine's for a root leaf)
// responsibility to borrow or merge with a sibling.
func (l *Leaf[K, V]) Delete(cfg *Config[K], revision uint64, key K) DeleteOutcome[K, V] {
	idx, ok := isMatch(findPos(l.keys, key, cfg.Cmp))
	if !ok {
		return DeleteOutcome[K, V]{Kind: NotPresent}
	}
	removedValue := l.holders[idx].Value()
	newKeys := removeAt(l.keys, idx)
	newHolders := removeAt(l.holders, idx)
	newLeaf := &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newKeys, holders: newHolders}
	removed := entry.Tuple[K, V]{Key: key, Value: removedValue}

	var newLeftMost *K
	if idx == 0 && len(newKeys) > 0 {
		k := newKeys[0]
		newLeftMost = &k
	}
	return DeleteOutcome[K, V]{Kind: Removed, Page: newLeaf, RemovedTuple: &removed, NewLeftMostKey: newLeftMost}
}

// DeleteValue removes key only if equal reports its stored value equal to
// value (spec §9 Open Question: delete(k,v) deletes only if
// the stored value equals v, rather than discarding v and deleting by key
// alone).
func (l *Leaf[K, V]) DeleteValue(cfg *Config[K], revision uint64, key K, value V, equal func(a, b V) bool) DeleteOutcome[K, V] {
	idx, ok := isMatch(findPos(l.keys, key, cfg.Cmp))
	if !ok || !equal(l.holders[idx].Value(), value) {
		return DeleteOutcome[K, V]{Kind: NotPresent}
	}
	return l.Delete(cfg, revision, key)
}

// mergeLeaves combines two adjacent leaves into one (spec §4.1, delete
// MergedResult for the leaf level).
func mergeLeaves[K any, V any](cfg *Config[K], revision uint64, left, right *Leaf[K, V]) *Leaf[K, V] {
	keys := append(append([]K(nil), left.keys...), right.keys...)
	holders := append(append([]entry.ValueHolder[V](nil), left.holders...), right.holders...)
	return &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: keys, holders: holders}
}

// borrowLeaves redistributes a single element across the boundary between
// two adjacent leaves, moving from rich into poor, and returns the updated
// (left, right) pair plus the replacement separator (spec §4.1,
// BorrowedResult for the leaf level).
func borrowLeaves[K any, V any](cfg *Config[K], revision uint64, poorIsLeft bool, poor, rich *Leaf[K, V]) (left, right *Leaf[K, V], separator K) {
	if poorIsLeft {
		movedKey := rich.keys[0]
		movedHolder := rich.holders[0]
		newPoorKeys := append(append([]K(nil), poor.keys...), movedKey)
		newPoorHolders := append(append([]entry.ValueHolder[V](nil), poor.holders...), movedHolder)
		newRichKeys := append([]K(nil), rich.keys[1:]...)
		newRichHolders := append([]entry.ValueHolder[V](nil), rich.holders[1:]...)
		left = &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newPoorKeys, holders: newPoorHolders}
		right = &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newRichKeys, holders: newRichHolders}
		return left, right, right.keys[0]
	}
	n := len(rich.keys)
	movedKey := rich.keys[n-1]
	movedHolder := rich.holders[n-1]
	newRichKeys := append([]K(nil), rich.keys[:n-1]...)
	newRichHolders := append([]entry.ValueHolder[V](nil), rich.holders[:n-1]...)
	newPoorKeys := append([]K{movedKey}, poor.keys...)
	newPoorHolders := append([]entry.ValueHolder[V]{movedHolder}, poor.holders...)
	left = &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newRichKeys, holders: newRichHolders}
	right = &Leaf[K, V]{revision: revision, recordID: cfg.NextRecordID(), keys: newPoorKeys, holders: newPoorHolders}
	return left, right, right.keys[0]
}
