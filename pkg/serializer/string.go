package serializer

import (
	"encoding/binary"
	"strings"

	"dinokv/pkg/iobuf"
)

// String serializes strings as a 4-byte big-endian length prefix followed
// by the raw bytes, which makes the encoding self-delimiting.
type String struct{}

func (String) Serialize(value string) []byte {
	buf := make([]byte, 4+len(value))
	binary.BigEndian.PutUint32(buf, uint32(len(value)))
	copy(buf[4:], value)
	return buf
}

func (String) Deserialize(r *iobuf.BufferHandler) (string, error) {
	lenBuf, err := r.Read(4)
	if err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(lenBuf)
	if n == 0 {
		return "", nil
	}
	buf, err := r.Read(int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func (String) Compare(a, b string) int {
	return strings.Compare(a, b)
}
