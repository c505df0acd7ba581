package journal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"dinokv/pkg/iobuf"
	"dinokv/pkg/serializer"
)

func TestWriterDrainsEnqueuedRecordsInOrder(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "journal.log"))
	if err != nil {
		t.Fatalf("create journal file: %v", err)
	}
	defer f.Close()

	var audit bytes.Buffer
	w := New[int64, string](f, &audit, serializer.Int64{}, serializer.String{}, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(); err != nil {
			t.Errorf("run: %v", err)
		}
	}()

	ctx := context.Background()
	if err := w.Enqueue(ctx, Addition[int64, string](1, "a")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := w.Enqueue(ctx, Deletion[int64, string](1)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := w.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	bh := iobuf.New(f)
	first, err := Decode(bh, serializer.Int64{}, serializer.String{})
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if first.Tag != TagAddition || first.Key != 1 || first.Value != "a" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	second, err := Decode(bh, serializer.Int64{}, serializer.String{})
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if second.Tag != TagDeletion || second.Key != 1 {
		t.Fatalf("unexpected second record: %+v", second)
	}

	if audit.Len() == 0 {
		t.Fatalf("expected audit trail to record both writes")
	}
}

func TestWriterEnqueueBlocksUntilCapacityFrees(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "journal.log"))
	if err != nil {
		t.Fatalf("create journal file: %v", err)
	}
	defer f.Close()

	var audit bytes.Buffer
	w := New[int64, string](f, &audit, serializer.Int64{}, serializer.String{}, 1)

	ctx := context.Background()
	if err := w.Enqueue(ctx, Addition[int64, string](1, "a")); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}

	bounded, cancel := context.WithCancel(ctx)
	cancel()
	if err := w.Enqueue(bounded, Addition[int64, string](2, "b")); err == nil {
		t.Fatalf("expected enqueue against a full, cancelled-context queue to fail")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run()
	}()
	if err := w.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
}
