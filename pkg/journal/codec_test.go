package journal

import (
	"bytes"
	"testing"

	"dinokv/pkg/iobuf"
	"dinokv/pkg/serializer"
)

func TestEncodeDecodeAdditionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := Addition[int64, string](7, "seven")
	if err := Encode(&buf, serializer.Int64{}, serializer.String{}, rec); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(iobuf.New(&buf), serializer.Int64{}, serializer.String{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tag != TagAddition || got.Key != 7 || got.Value != "seven" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestEncodeDecodeDeletionRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := Deletion[int64, string](42)
	if err := Encode(&buf, serializer.Int64{}, serializer.String{}, rec); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(iobuf.New(&buf), serializer.Int64{}, serializer.String{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Tag != TagDeletion || got.Key != 42 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.Value != "" {
		t.Fatalf("deletion record must not carry a value, got %q", got.Value)
	}
}

func TestDecodeMultipleRecordsInSequence(t *testing.T) {
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

	bh := iobuf.New(&buf)
	for i, want := range recs {
		got, err := Decode(bh, serializer.Int64{}, serializer.String{})
		if err != nil {
			t.Fatalf("decode record %d: %v", i, err)
		}
		if got.Tag != want.Tag || got.Key != want.Key || got.Value != want.Value {
			t.Fatalf("record %d mismatch: got %+v, want %+v", i, got, want)
		}
	}
	if _, err := Decode(bh, serializer.Int64{}, serializer.String{}); err != iobuf.ErrEndOfInput {
		t.Fatalf("expected ErrEndOfInput at the end of the stream, got %v", err)
	}
}

func TestPoisonPillIsTaggedSentinel(t *testing.T) {
	rec := poisonPill[int64, string]()
	if !rec.IsPoison() {
		t.Fatalf("expected poison pill to report IsPoison")
	}
	if byte(rec.Tag) != 0xff {
		t.Fatalf("unexpected poison tag value: %x", rec.Tag)
	}
}
