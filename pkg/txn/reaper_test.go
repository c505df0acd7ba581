package txn

import (
	"testing"
	"time"

	"dinokv/pkg/page"
)

type fakeRoot struct {
	page.Page[int64, string]
	revision uint64
}

func (f fakeRoot) Revision() uint64 { return f.revision }

func TestSweepReapsClosedTransactionsFromHead(t *testing.T) {
	r := NewReaper[int64, string](time.Hour)
	a := New[int64, string](fakeRoot{revision: 1}, 0)
	b := New[int64, string](fakeRoot{revision: 2}, 0)
	r.Track(a)
	r.Track(b)

	a.Close()
	reaped := r.Sweep()
	if reaped != 1 {
		t.Fatalf("expected to reap exactly the closed head transaction, got %d", reaped)
	}
}

func TestSweepStopsAtFirstLiveTransaction(t *testing.T) {
	r := NewReaper[int64, string](time.Hour)
	a := New[int64, string](fakeRoot{revision: 1}, 0)
	b := New[int64, string](fakeRoot{revision: 2}, 0)
	r.Track(a)
	r.Track(b)

	b.Close() // b is behind a in the FIFO and must not be reaped yet
	reaped := r.Sweep()
	if reaped != 0 {
		t.Fatalf("expected no reaps while the head transaction is still live, got %d", reaped)
	}

	a.Close()
	reaped = r.Sweep()
	if reaped != 2 {
		t.Fatalf("expected both transactions reaped once the head closes, got %d", reaped)
	}
}

func TestExpiredTransactionIsRetirable(t *testing.T) {
	tr := New[int64, string](fakeRoot{revision: 1}, time.Nanosecond)
	time.Sleep(time.Millisecond)
	if !tr.Expired() {
		t.Fatalf("expected transaction to be expired")
	}
	if !tr.Retirable() {
		t.Fatalf("an expired transaction must be retirable even if never closed")
	}
}

func TestRunAndStopDrainsViaTicker(t *testing.T) {
	r := NewReaper[int64, string](time.Millisecond)
	tr := New[int64, string](fakeRoot{revision: 1}, 0)
	r.Track(tr)
	tr.Close()

	r.Run()
	time.Sleep(20 * time.Millisecond)
	r.Stop()

	if r.fifo.PeekHead() != nil {
		t.Fatalf("expected the background sweep loop to have reaped the closed transaction")
	}
}
