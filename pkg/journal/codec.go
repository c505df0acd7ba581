package journal

import (
	"fmt"
	"io"

	"dinokv/pkg/iobuf"
	"dinokv/pkg/serializer"
)

// Encode writes tag + serialized key (+ serialized value for an
// addition) to w (spec §4.4/§6.4 journal record framing — no trailer).
func Encode[K any, V any](w io.Writer, ks serializer.Serializer[K], vs serializer.Serializer[V], r Record[K, V]) error {
	if _, err := w.Write([]byte{byte(r.Tag)}); err != nil {
		return fmt.Errorf("journal: write tag: %w", err)
	}
	if _, err := w.Write(ks.Serialize(r.Key)); err != nil {
		return fmt.Errorf("journal: write key: %w", err)
	}
	if r.Tag == TagAddition {
		if _, err := w.Write(vs.Serialize(r.Value)); err != nil {
			return fmt.Errorf("journal: write value: %w", err)
		}
	}
	return nil
}

// Decode reads one record from bh. It returns iobuf.ErrEndOfInput,
// unwrapped, when the journal is exhausted at a record boundary — the
// contract spec §6.4 calls "end-of-file terminates replay".
func Decode[K any, V any](bh *iobuf.BufferHandler, ks serializer.Serializer[K], vs serializer.Serializer[V]) (Record[K, V], error) {
	var zero Record[K, V]
	tagBytes, err := bh.Read(1)
	if err != nil {
		return zero, err
	}
	tag := Tag(tagBytes[0])
	key, err := ks.Deserialize(bh)
	if err != nil {
		return zero, fmt.Errorf("journal: decode key: %w", err)
	}
	if tag != TagAddition {
		return Record[K, V]{Tag: tag, Key: key}, nil
	}
	value, err := vs.Deserialize(bh)
	if err != nil {
		return zero, fmt.Errorf("journal: decode value: %w", err)
	}
	return Record[K, V]{Tag: tag, Key: key, Value: value}, nil
}
