// Package serializer declares the contract the engine expects from
// pluggable key/value codecs, plus a handful of concrete serializers used
// by the store's own tests and the inspect CLI.
package serializer

import "dinokv/pkg/iobuf"

// Serializer converts values of type T to and from bytes and imposes the
// total order the engine derives its key comparator from. Deserialize must
// read exactly as many bytes as Serialize wrote for any given value.
type Serializer[T any] interface {
	Serialize(value T) []byte
	Deserialize(r *iobuf.BufferHandler) (T, error)
	Compare(a, b T) int
}
