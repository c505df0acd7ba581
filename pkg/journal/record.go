// Package journal implements the write-ahead log: record framing, a
// bounded single-producer/single-consumer queue, and a background writer
// that drains it to a journal file alongside the data file.
package journal

// Tag identifies which kind of record follows in the journal stream.
type Tag byte

const (
	TagAddition Tag = 0x00
	TagDeletion Tag = 0x01
	tagPoison   Tag = 0xff // never written to disk; in-memory sentinel only
)

// Record is one modification: an Addition(key, value), a Deletion(key),
// or a poison-pill carrying no payload at all.
type Record[K any, V any] struct {
	Tag   Tag
	Key   K
	Value V
}

// Addition builds an ADDITION record.
func Addition[K any, V any](key K, value V) Record[K, V] {
	return Record[K, V]{Tag: TagAddition, Key: key, Value: value}
}

// Deletion builds a DELETION record.
func Deletion[K any, V any](key K) Record[K, V] {
	return Record[K, V]{Tag: TagDeletion, Key: key}
}

// poisonPill builds the shutdown sentinel. It is never encoded to disk —
// Writer.Close enqueues it, and Writer.Run returns on dequeuing it before
// calling Encode.
func poisonPill[K any, V any]() Record[K, V] {
	return Record[K, V]{Tag: tagPoison}
}

// IsPoison reports whether r is the shutdown sentinel.
func (r Record[K, V]) IsPoison() bool { return r.Tag == tagPoison }
