package journal

import (
	"bytes"
	"testing"

	"dinokv/pkg/serializer"
)

func TestReplayAppliesEachRecordInOrder(t *testing.T) {
	var buf bytes.Buffer
	recs := []Record[int64, string]{
		Addition[int64, string](1, "a"),
		Addition[int64, string](2, "b"),
		Deletion[int64, string](1),
	}
	for _, r := range recs {
		if err := Encode(&buf, serializer.Int64{}, serializer.String{}, r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}

	var applied []Record[int64, string]
	count, err := Replay(&buf, serializer.Int64{}, serializer.String{}, func(r Record[int64, string]) error {
		applied = append(applied, r)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != len(recs) {
		t.Fatalf("expected %d replayed records, got %d", len(recs), count)
	}
	for i, want := range recs {
		if applied[i].Tag != want.Tag || applied[i].Key != want.Key || applied[i].Value != want.Value {
			t.Fatalf("record %d mismatch: got %+v, want %+v", i, applied[i], want)
		}
	}
}

func TestReplayEmptyStreamIsANoOp(t *testing.T) {
	var buf bytes.Buffer
	count, err := Replay(&buf, serializer.Int64{}, serializer.String{}, func(Record[int64, string]) error {
		t.Fatalf("apply should never be called on an empty journal")
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 records, got %d", count)
	}
}
