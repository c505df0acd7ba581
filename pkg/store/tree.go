// Package store implements the top-level embedded engine: root
// publication under a single writer lock, the revision/recordId
// counters, element bookkeeping, and the journal/checkpoint lifecycle
// wrapped around the page package's structural algorithms.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"dinokv/pkg/config"
	"dinokv/pkg/journal"
	"dinokv/pkg/page"
	"dinokv/pkg/serializer"
	"dinokv/pkg/txn"

	"golang.org/x/sync/errgroup"
)

// rootHolder is the concrete type published through rootPtr, so every
// atomic.Pointer.Store/Load call moves a single consistent pointer type
// regardless of whether the underlying root is a Leaf or a Node (spec §5:
// "a variable with release-store/acquire-load semantics").
type rootHolder[K any, V any] struct {
	root page.Page[K, V]
}

// Tree is the embedded, ordered key-value engine: one writer at a time,
// many concurrent lock-free readers, durable via journal + checkpoint.
type Tree[K any, V any] struct {
	writerMu sync.Mutex
	rootPtr  atomic.Pointer[rootHolder[K, V]]

	revisionCounter atomic.Uint64
	recordIDCounter atomic.Uint64
	nbElems         int

	cfg page.Config[K]
	cmp page.Comparator[K]

	keySerializer   serializer.Serializer[K]
	valueSerializer serializer.Serializer[V]
	valueEqual      func(a, b V) bool

	tuning     config.Tuning
	dataPath   string
	journalPath string
	auditPath  string

	journalFile *os.File
	auditFile   *os.File
	writer      *journal.Writer[K, V]
	journaling  bool

	reaper *txn.Reaper[K, V]
	group  *errgroup.Group

	closed bool
}

// Options bundles what Open needs beyond the default Tuning.
type Options[K any, V any] struct {
	KeySerializer   serializer.Serializer[K]
	ValueSerializer serializer.Serializer[V]
	ValueEqual      func(a, b V) bool // used by DeleteValue; if nil, two values are equal when ValueSerializer.Compare returns 0
	Tuning          config.Tuning
}

// Open opens (creating if absent) the store rooted at basePath: loads the
// data file if present, replays the journal on top of it, then starts the
// background journal writer and reaper (spec §4.4 Recovery on open).
func Open[K any, V any](basePath string, opts Options[K, V]) (*Tree[K, V], error) {
	tuning := opts.Tuning.WithDefaults()

	dataPath := basePath
	if _, err := os.Stat(dataPath); err != nil {
		dataPath = basePath + config.DefaultDataSuffix
	}
	journalPath := filepath.Join(filepath.Dir(dataPath), config.DefaultJournalName)
	auditPath := journalPath + config.DefaultAuditSuffix

	equal := opts.ValueEqual
	if equal == nil {
		equal = func(a, b V) bool {
			return opts.ValueSerializer.Compare(a, b) == 0
		}
	}

	t := &Tree[K, V]{
		cmp:             opts.KeySerializer.Compare,
		keySerializer:   opts.KeySerializer,
		valueSerializer: opts.ValueSerializer,
		valueEqual:      equal,
		tuning:          tuning,
		dataPath:        dataPath,
		journalPath:     journalPath,
		auditPath:       auditPath,
	}
	t.cfg = page.Config[K]{
		PageSize:     tuning.PageSize,
		Cmp:          t.cmp,
		NextRecordID: t.nextRecordID,
	}
	t.publishRoot(page.NewEmptyLeaf[K, V](t.nextRevision(), t.nextRecordID()))

	if err := loadDataFile(dataPath, t); err != nil {
		return nil, err
	}

	journalFile, err := os.OpenFile(journalPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open journal: %v", ErrIOFailure, err)
	}
	t.journalFile = journalFile

	if info, statErr := journalFile.Stat(); statErr == nil && info.Size() > 0 {
		if _, err := journalFile.Seek(0, 0); err != nil {
			return nil, fmt.Errorf("%w: seek journal for replay: %v", ErrIOFailure, err)
		}
		_, err := journal.Replay(journalFile, t.keySerializer, t.valueSerializer, func(rec journal.Record[K, V]) error {
			switch rec.Tag {
			case journal.TagAddition:
				return t.insertNoJournal(rec.Key, rec.Value)
			case journal.TagDeletion:
				return t.deleteNoJournal(rec.Key)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if err := t.truncateJournal(); err != nil {
			return nil, err
		}
	}

	auditFile, err := os.OpenFile(auditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open audit log: %v", ErrIOFailure, err)
	}
	t.auditFile = auditFile

	if _, err := t.journalFile.Seek(0, 2); err != nil {
		return nil, fmt.Errorf("%w: seek journal to append: %v", ErrIOFailure, err)
	}
	t.writer = journal.New(t.journalFile, t.auditFile, t.keySerializer, t.valueSerializer, tuning.JournalQueueDepth)
	t.reaper = txn.NewReaper[K, V](tuning.ReadTimeout)
	t.journaling = true

	var g errgroup.Group
	t.group = &g
	g.Go(t.writer.Run)
	t.reaper.Run()

	return t, nil
}

func (t *Tree[K, V]) nextRevision() uint64 { return t.revisionCounter.Add(1) }
func (t *Tree[K, V]) nextRecordID() uint64 { return t.recordIDCounter.Add(1) }

func (t *Tree[K, V]) currentRoot() page.Page[K, V] {
	return t.rootPtr.Load().root
}

func (t *Tree[K, V]) publishRoot(p page.Page[K, V]) {
	t.rootPtr.Store(&rootHolder[K, V]{root: p})
}

// beginRead opens a new snapshot transaction pinning the current root and
// registers it with the reaper.
func (t *Tree[K, V]) beginRead() *txn.Transaction[K, V] {
	tx := txn.New[K, V](t.currentRoot(), t.tuning.ReadTimeout)
	if t.reaper != nil {
		t.reaper.Track(tx)
	}
	return tx
}

// Close stops the background reaper and journal writer, performs a final
// flush, and releases the root (spec §4.5/§5 Cancellation).
func (t *Tree[K, V]) Close() error {
	t.writerMu.Lock()
	defer t.writerMu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true

	if t.reaper != nil {
		t.reaper.Stop()
	}
	if t.writer != nil {
		if err := t.writer.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "store: journal close: %v\n", err)
		}
	}
	if t.group != nil {
		if err := t.group.Wait(); err != nil {
			fmt.Fprintf(os.Stderr, "store: journal writer exited with error: %v\n", err)
		}
	}

	if err := checkpoint(t, t.dataPath); err != nil {
		return err
	}
	if err := t.truncateJournal(); err != nil {
		return err
	}

	if t.journalFile != nil {
		_ = t.journalFile.Close()
	}
	if t.auditFile != nil {
		_ = t.auditFile.Close()
	}
	t.publishRoot(page.NewEmptyLeaf[K, V](t.nextRevision(), t.nextRecordID()))
	return nil
}

func (t *Tree[K, V]) truncateJournal() error {
	if err := t.journalFile.Truncate(0); err != nil {
		return fmt.Errorf("%w: truncate journal: %v", ErrIOFailure, err)
	}
	if _, err := t.journalFile.Seek(0, 0); err != nil {
		return fmt.Errorf("%w: seek truncated journal: %v", ErrIOFailure, err)
	}
	return t.journalFile.Sync()
}

// Stats reports read-only diagnostics about the current snapshot.
type Stats struct {
	NbElems  int
	Revision uint64
	PageSize int
	Depth    int
}

// Stats returns a snapshot of engine diagnostics.
func (t *Tree[K, V]) Stats() Stats {
	top := t.currentRoot()
	root := top
	depth := 1
	for {
		node, ok := root.(*page.Node[K, V])
		if !ok {
			break
		}
		depth++
		root = node.ChildAt(0)
	}
	return Stats{
		NbElems:  t.nbElems,
		Revision: top.Revision(),
		PageSize: t.cfg.PageSize,
		Depth:    depth,
	}
}
