// Package iobuf implements the pull-based buffered reader the serializer
// contract deserializes from: a fixed intermediate buffer refilled from an
// underlying reader on demand.
package iobuf

import (
	"errors"
	"io"

	"github.com/ncw/directio"
)

// ErrEndOfInput is returned by Read when the underlying stream is exhausted
// before any bytes of the current request were produced.
var ErrEndOfInput = errors.New("iobuf: end of input")

// ErrShortRead is returned when the stream ends partway through satisfying
// a Read request — a short read outside of normal end-of-stream, which the
// store surfaces as a corruption error rather than a clean EOF.
var ErrShortRead = errors.New("iobuf: short read before request was satisfied")

// BufferHandler pulls bytes from r through a fixed-size intermediate
// buffer. The buffer is a directio-aligned block, so reads are issued in
// block-sized, aligned chunks; the data file and journal it reads are
// ordinary (not O_DIRECT) files.
type BufferHandler struct {
	r      io.Reader
	buf    []byte
	pos    int
	filled int
	eof    bool
}

// New wraps r with a BufferHandler using the default directio block size.
func New(r io.Reader) *BufferHandler {
	return &BufferHandler{r: r, buf: directio.AlignedBlock(directio.BlockSize)}
}

// Read returns the next n bytes, refilling the internal buffer from the
// underlying reader as many times as necessary.
func (b *BufferHandler) Read(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if b.pos >= b.filled {
			if err := b.refill(); err != nil {
				if errors.Is(err, io.EOF) {
					if len(out) == 0 {
						return nil, ErrEndOfInput
					}
					return nil, ErrShortRead
				}
				return nil, err
			}
		}
		take := n - len(out)
		if avail := b.filled - b.pos; avail < take {
			take = avail
		}
		out = append(out, b.buf[b.pos:b.pos+take]...)
		b.pos += take
	}
	return out, nil
}

func (b *BufferHandler) refill() error {
	if b.eof {
		return io.EOF
	}
	n, err := b.r.Read(b.buf)
	if n > 0 {
		b.pos, b.filled = 0, n
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			b.eof = true
			if n == 0 {
				return io.EOF
			}
			return nil
		}
		return err
	}
	return nil
}
