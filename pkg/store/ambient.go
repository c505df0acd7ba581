package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
	cp "github.com/otiai10/copy"
)

// Backup copies the live data and journal files into destDir, an
// operational escape hatch layered on top of (not a replacement for) the
// rename-based checkpoint in Flush.
func (t *Tree[K, V]) Backup(destDir string) error {
	t.writerMu.Lock()
	defer t.writerMu.Unlock()
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: create backup dir: %v", ErrIOFailure, err)
	}
	if _, err := os.Stat(t.dataPath); err == nil {
		if err := cp.Copy(t.dataPath, filepath.Join(destDir, filepath.Base(t.dataPath))); err != nil {
			return fmt.Errorf("%w: copy data file: %v", ErrIOFailure, err)
		}
	}
	if err := cp.Copy(t.journalPath, filepath.Join(destDir, filepath.Base(t.journalPath))); err != nil {
		return fmt.Errorf("%w: copy journal file: %v", ErrIOFailure, err)
	}
	return nil
}

// DataDigest computes an xxhash64 digest of the on-disk data file, for
// drift detection by operational tooling; never consulted by recovery.
func (t *Tree[K, V]) DataDigest() (uint64, error) {
	f, err := os.Open(t.dataPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open data file for digest: %v", ErrIOFailure, err)
	}
	defer f.Close()
	h := xxhash.New()
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return h.Sum64(), nil
}

// AuditPath returns the path to the plain-text audit trail, for tools
// that want to tail it (e.g. cmd/dinokv-inspect via backscanner).
func (t *Tree[K, V]) AuditPath() string {
	return t.auditPath
}
