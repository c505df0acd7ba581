package serializer

import (
	"encoding/binary"

	"dinokv/pkg/iobuf"
)

// Int64Size is the fixed on-disk width of a serialized int64 — fixed width
// makes the encoding self-delimiting without a length prefix.
const Int64Size = 8

// Int64 serializes int64 keys/values as fixed-width big-endian bytes.
type Int64 struct{}

func (Int64) Serialize(value int64) []byte {
	buf := make([]byte, Int64Size)
	binary.BigEndian.PutUint64(buf, uint64(value))
	return buf
}

func (Int64) Deserialize(r *iobuf.BufferHandler) (int64, error) {
	buf, err := r.Read(Int64Size)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

func (Int64) Compare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
