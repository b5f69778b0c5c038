// Package wire implements the chunk-level primitives of the transfer
// protocol: 4-byte ASCII tags followed by a big-endian u32 length and the
// raw payload. Reading goes through a forward-only cursor that bounds-checks
// every access; writing appends to a growing buffer.
package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

const (
	// TagSize is the fixed width of a chunk tag.
	TagSize = 4
	// LengthSize is the fixed width of a chunk length field.
	LengthSize = 4
)

var (
	// ErrOutOfBounds means the buffer is shorter than a declared field demands.
	ErrOutOfBounds = errors.New("wire: read past end of buffer")
	// ErrInvalidStructure means a field's bytes cannot be interpreted.
	ErrInvalidStructure = errors.New("wire: invalid field structure")
	// ErrTooBig means a payload exceeds the representable 32-bit length.
	ErrTooBig = errors.New("wire: payload exceeds representable length")
	// ErrBadTag means a tag is not exactly 4 bytes of ASCII.
	ErrBadTag = errors.New("wire: tag must be 4 ASCII bytes")
)

// Reader walks a buffer with a stateful, forward-only offset.
// Every read validates bounds before touching the buffer.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset reports the current cursor position.
func (r *Reader) Offset() int { return r.off }

// Len reports the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) checkBounds(size int) error {
	if size < 0 || len(r.buf)-r.off < size {
		return ErrOutOfBounds
	}
	return nil
}

// ReadTag reads a 4-byte chunk tag and advances the cursor.
func (r *Reader) ReadTag() (string, error) {
	if err := r.checkBounds(TagSize); err != nil {
		return "", err
	}
	raw := r.buf[r.off : r.off+TagSize]
	if !utf8.Valid(raw) {
		return "", ErrInvalidStructure
	}
	r.off += TagSize
	return string(raw), nil
}

// ReadLength reads a big-endian u32 length field and advances the cursor.
func (r *Reader) ReadLength() (int, error) {
	if err := r.checkBounds(LengthSize); err != nil {
		return 0, err
	}
	size := binary.BigEndian.Uint32(r.buf[r.off : r.off+LengthSize])
	r.off += LengthSize
	return int(size), nil
}

// ReadPayload copies size bytes out of the buffer and advances the cursor.
func (r *Reader) ReadPayload(size int) ([]byte, error) {
	if err := r.checkBounds(size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, r.buf[r.off:r.off+size])
	r.off += size
	return out, nil
}

// Writer accumulates an encoded message. Output is append-only.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the accumulated output size.
func (w *Writer) Len() int { return len(w.buf) }

// WriteTag appends a 4-byte chunk tag.
func (w *Writer) WriteTag(tag string) error {
	if len(tag) != TagSize {
		return ErrBadTag
	}
	w.buf = append(w.buf, tag...)
	return nil
}

// WriteLength appends a big-endian u32 length field.
// Lengths beyond 32 bits are an encode error, never silent truncation.
func (w *Writer) WriteLength(size int) error {
	if size < 0 || size > math.MaxUint32 {
		return ErrTooBig
	}
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(size))
	return nil
}

// WriteChunk appends tag, length and payload in order.
func (w *Writer) WriteChunk(tag string, payload []byte) error {
	if err := w.WriteTag(tag); err != nil {
		return err
	}
	if err := w.WriteLength(len(payload)); err != nil {
		return err
	}
	w.buf = append(w.buf, payload...)
	return nil
}
