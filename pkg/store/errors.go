package store

import "errors"

// ErrInvalidArgument is raised for a nil key on insert/delete, or a nil
// value on a value-specific delete (spec §7).
var ErrInvalidArgument = errors.New("store: invalid argument")

// ErrKeyNotFound is raised by Get when the key is absent from the tree.
var ErrKeyNotFound = errors.New("store: key not found")

// ErrIOFailure wraps file/channel/serialization I/O errors at the engine
// boundary.
var ErrIOFailure = errors.New("store: io failure")

// ErrShortRead is raised when a data or journal read ends partway through
// a required field, outside of normal end-of-stream.
var ErrShortRead = errors.New("store: short read")
