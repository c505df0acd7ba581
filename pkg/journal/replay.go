package journal

import (
	"errors"
	"fmt"
	"io"

	"dinokv/pkg/iobuf"
	"dinokv/pkg/serializer"
)

// Replay decodes every record from r in order and invokes apply for each,
// stopping cleanly at end-of-file (spec §4.4 "Recovery on open"). apply is
// responsible for applying the record to the live tree without
// re-journaling it.
func Replay[K any, V any](r io.Reader, ks serializer.Serializer[K], vs serializer.Serializer[V], apply func(Record[K, V]) error) (int, error) {
	bh := iobuf.New(r)
	count := 0
	for {
		rec, err := Decode(bh, ks, vs)
		if err != nil {
			if errors.Is(err, iobuf.ErrEndOfInput) {
				return count, nil
			}
			return count, fmt.Errorf("journal: replay: %w", err)
		}
		if err := apply(rec); err != nil {
			return count, fmt.Errorf("journal: replay apply: %w", err)
		}
		count++
	}
}
