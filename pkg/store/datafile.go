package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"dinokv/pkg/cursor"
	"dinokv/pkg/iobuf"
)

// loadDataFile reads the data file layout of spec §6.3: an 8-byte
// big-endian count followed by that many (key, value) pairs in ascending
// order, and replays them into a fresh empty tree via plain inserts.
func loadDataFile[K any, V any](path string, tree *Tree[K, V]) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: open data file: %v", ErrIOFailure, err)
	}
	defer f.Close()

	countBuf := make([]byte, 8)
	if _, err := io.ReadFull(f, countBuf); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%w: read count: %v", ErrShortRead, err)
	}
	count := binary.BigEndian.Uint64(countBuf)

	bh := iobuf.New(f)
	for i := uint64(0); i < count; i++ {
		key, err := tree.keySerializer.Deserialize(bh)
		if err != nil {
			return fmt.Errorf("%w: decode key %d/%d: %v", ErrShortRead, i, count, err)
		}
		value, err := tree.valueSerializer.Deserialize(bh)
		if err != nil {
			return fmt.Errorf("%w: decode value %d/%d: %v", ErrShortRead, i, count, err)
		}
		if err := tree.insertNoJournal(key, value); err != nil {
			return err
		}
	}
	return nil
}

// checkpoint walks the full current snapshot and writes it out per spec
// §6.5's atomic rename sequence: write to a fresh temp file, rename the
// live data file to a backup temp name, rename the new file into place,
// delete the backup. A crash between either rename leaves one of the two
// real files intact.
func checkpoint[K any, V any](tree *Tree[K, V], dataPath string) error {
	tmpNew := dataPath + ".tmp-new"
	tmpBackup := dataPath + ".tmp-backup"

	f, err := os.Create(tmpNew)
	if err != nil {
		return fmt.Errorf("%w: create checkpoint temp file: %v", ErrIOFailure, err)
	}

	countBuf := make([]byte, 8)
	binary.BigEndian.PutUint64(countBuf, uint64(tree.nbElems))
	if _, err := f.Write(countBuf); err != nil {
		f.Close()
		return fmt.Errorf("%w: write count: %v", ErrIOFailure, err)
	}

	txn := tree.beginRead()
	c := cursor.New(txn, tree.cmp)
	for {
		tup, ok := c.Next()
		if !ok {
			break
		}
		if _, err := f.Write(tree.keySerializer.Serialize(tup.Key)); err != nil {
			f.Close()
			c.Close()
			return fmt.Errorf("%w: write key: %v", ErrIOFailure, err)
		}
		if _, err := f.Write(tree.valueSerializer.Serialize(tup.Value)); err != nil {
			f.Close()
			c.Close()
			return fmt.Errorf("%w: write value: %v", ErrIOFailure, err)
		}
	}
	c.Close()

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("%w: fsync checkpoint file: %v", ErrIOFailure, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close checkpoint file: %v", ErrIOFailure, err)
	}

	if _, err := os.Stat(dataPath); err == nil {
		if err := os.Rename(dataPath, tmpBackup); err != nil {
			return fmt.Errorf("%w: rename live to backup: %v", ErrIOFailure, err)
		}
	}
	if err := os.Rename(tmpNew, dataPath); err != nil {
		return fmt.Errorf("%w: rename temp to live: %v", ErrIOFailure, err)
	}
	_ = os.Remove(tmpBackup)
	return nil
}
