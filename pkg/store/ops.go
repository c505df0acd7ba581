package store

import (
	"context"
	"fmt"
	"os"
	"reflect"

	"dinokv/pkg/cursor"
	"dinokv/pkg/entry"
	"dinokv/pkg/journal"
	"dinokv/pkg/page"
)

// isNilArg reports whether v is a "null" argument in the sense spec §7
// means for InvalidArgument: a nil pointer, interface, slice, map, chan,
// or func. Value types (int64, string, structs) can never be nil and so
// never trip this check, matching how those types behave in the original
// binding.
func isNilArg(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// Insert inserts or replaces the value stored under key, returning the
// value previously associated with key, or nil if key was newly inserted
// (spec §4.3).
func (t *Tree[K, V]) Insert(key K, value V) (*V, error) {
	if isNilArg(key) {
		return nil, ErrInvalidArgument
	}
	t.writerMu.Lock()
	defer t.writerMu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("%w: store closed", ErrIOFailure)
	}
	previous, err := t.insertLocked(key, value)
	if err != nil {
		return nil, err
	}
	if t.journaling {
		if err := t.writer.Enqueue(context.Background(), journal.Addition(key, value)); err != nil {
			fmt.Fprintf(os.Stderr, "store: journal enqueue failed: %v\n", err)
		}
	}
	return previous, nil
}

func (t *Tree[K, V]) insertLocked(key K, value V) (previous *V, err error) {
	revision := t.nextRevision()
	root := t.currentRoot()
	var outcome page.InsertOutcome[K, V]
	switch r := root.(type) {
	case *page.Leaf[K, V]:
		outcome = r.Insert(&t.cfg, revision, key, value)
	case *page.Node[K, V]:
		outcome = r.Insert(&t.cfg, revision, key, value)
	}

	var newRoot page.Page[K, V]
	if outcome.Kind == page.Modified {
		newRoot = outcome.Page
		if outcome.Previous == nil {
			t.nbElems++
		}
	} else {
		newRoot = page.NewRootNode[K, V](revision, t.nextRecordID(), outcome.Pivot, outcome.Left, outcome.Right)
		t.nbElems++
	}
	t.publishRoot(newRoot)
	return outcome.Previous, nil
}

// insertNoJournal applies an insert during data-file load or journal
// replay, bypassing the journal writer entirely.
func (t *Tree[K, V]) insertNoJournal(key K, value V) error {
	_, err := t.insertLocked(key, value)
	return err
}

// Delete removes key if present, returning the removed (key, value) tuple,
// or nil if key was absent (spec §4.3).
func (t *Tree[K, V]) Delete(key K) (*entry.Tuple[K, V], error) {
	if isNilArg(key) {
		return nil, ErrInvalidArgument
	}
	t.writerMu.Lock()
	defer t.writerMu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("%w: store closed", ErrIOFailure)
	}
	removed, err := t.deleteLocked(key)
	if err != nil {
		return nil, err
	}
	if t.journaling {
		if err := t.writer.Enqueue(context.Background(), journal.Deletion[K, V](key)); err != nil {
			fmt.Fprintf(os.Stderr, "store: journal enqueue failed: %v\n", err)
		}
	}
	return removed, nil
}

// DeleteValue removes key only if its stored value equals value, returning
// the removed (key, value) tuple, or nil if key was absent or its value
// didn't match (SPEC_FULL.md Open Question 2).
func (t *Tree[K, V]) DeleteValue(key K, value V) (*entry.Tuple[K, V], error) {
	if isNilArg(key) {
		return nil, ErrInvalidArgument
	}
	if isNilArg(value) {
		return nil, ErrInvalidArgument
	}
	t.writerMu.Lock()
	defer t.writerMu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("%w: store closed", ErrIOFailure)
	}
	revision := t.nextRevision()
	root := t.currentRoot()
	var outcome page.DeleteOutcome[K, V]
	switch r := root.(type) {
	case *page.Leaf[K, V]:
		outcome = r.DeleteValue(&t.cfg, revision, key, value, t.valueEqual)
	case *page.Node[K, V]:
		outcome = r.DeleteValue(&t.cfg, revision, key, value, t.valueEqual)
	}
	if outcome.Kind == page.NotPresent {
		return nil, ErrKeyNotFound
	}
	t.publishRoot(collapseIfNeeded[K, V](outcome.Page))
	t.nbElems--
	if t.journaling {
		if err := t.writer.Enqueue(context.Background(), journal.Deletion[K, V](key)); err != nil {
			fmt.Fprintf(os.Stderr, "store: journal enqueue failed: %v\n", err)
		}
	}
	return outcome.RemovedTuple, nil
}

func (t *Tree[K, V]) deleteLocked(key K) (*entry.Tuple[K, V], error) {
	revision := t.nextRevision()
	root := t.currentRoot()
	var outcome page.DeleteOutcome[K, V]
	switch r := root.(type) {
	case *page.Leaf[K, V]:
		outcome = r.Delete(&t.cfg, revision, key)
	case *page.Node[K, V]:
		outcome = r.Delete(&t.cfg, revision, key)
	}
	if outcome.Kind == page.NotPresent {
		return nil, ErrKeyNotFound
	}
	t.publishRoot(collapseIfNeeded[K, V](outcome.Page))
	t.nbElems--
	return outcome.RemovedTuple, nil
}

func (t *Tree[K, V]) deleteNoJournal(key K) error {
	_, err := t.deleteLocked(key)
	return err
}

// collapseIfNeeded replaces an internal root that merged down to zero
// separators with its sole remaining child (spec §4.1 root collapse).
func collapseIfNeeded[K any, V any](p page.Page[K, V]) page.Page[K, V] {
	if node, ok := p.(*page.Node[K, V]); ok && node.NumElems() == 0 {
		return node.SoleChild()
	}
	return p
}

// Get returns the value stored under key.
func (t *Tree[K, V]) Get(key K) (V, error) {
	var zero V
	if isNilArg(key) {
		return zero, ErrInvalidArgument
	}
	tx := t.beginRead()
	defer tx.Close()
	switch r := tx.Root().(type) {
	case *page.Leaf[K, V]:
		if v, ok := r.Get(key, t.cmp); ok {
			return v, nil
		}
	case *page.Node[K, V]:
		if v, ok := r.Get(key, t.cmp); ok {
			return v, nil
		}
	}
	return zero, ErrKeyNotFound
}

// Exist reports whether key is present, without allocating an error on
// the hot path (SPEC_FULL.md §5 supplemented feature).
func (t *Tree[K, V]) Exist(key K) bool {
	if isNilArg(key) {
		return false
	}
	tx := t.beginRead()
	defer tx.Close()
	switch r := tx.Root().(type) {
	case *page.Leaf[K, V]:
		_, ok := r.Get(key, t.cmp)
		return ok
	case *page.Node[K, V]:
		_, ok := r.Get(key, t.cmp)
		return ok
	}
	return false
}

// Browse opens a cursor over the current snapshot from the start of the
// key space.
func (t *Tree[K, V]) Browse() *cursor.Cursor[K, V] {
	return cursor.New(t.beginRead(), t.cmp)
}

// BrowseAt opens a cursor positioned at the first key >= key.
func (t *Tree[K, V]) BrowseAt(key K) *cursor.Cursor[K, V] {
	return cursor.AtKey(t.beginRead(), t.cmp, key)
}

// Flush commits the current root to disk and truncates the journal
// (spec flush()).
func (t *Tree[K, V]) Flush() error {
	t.writerMu.Lock()
	defer t.writerMu.Unlock()
	if err := checkpoint(t, t.dataPath); err != nil {
		return err
	}
	return t.truncateJournal()
}
