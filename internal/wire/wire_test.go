package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Sequential(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteChunk("XDAT", []byte("hello")))

	r := NewReader(w.Bytes())
	tag, err := r.ReadTag()
	require.NoError(t, err)
	assert.Equal(t, "XDAT", tag)

	size, err := r.ReadLength()
	require.NoError(t, err)
	assert.Equal(t, 5, size)

	payload, err := r.ReadPayload(size)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), payload)
	assert.Equal(t, 0, r.Remaining())
}

func TestReader_OutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short tag", []byte("XD")},
		{"tag only", []byte("XDAT")},
		{"short length", []byte("XDAT\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.buf)
			if _, err := r.ReadTag(); err != nil {
				assert.ErrorIs(t, err, ErrOutOfBounds)
				return
			}
			_, err := r.ReadLength()
			assert.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
}

func TestReader_PayloadPastEnd(t *testing.T) {
	r := NewReader([]byte("abc"))
	_, err := r.ReadPayload(4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	// The cursor must not advance on a failed read.
	assert.Equal(t, 0, r.Offset())
}

func TestReader_DeclaredLengthExceedsBuffer(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteTag("XDAT"))
	require.NoError(t, w.WriteLength(100))
	buf := append(w.Bytes(), []byte("short")...)

	r := NewReader(buf)
	_, err := r.ReadTag()
	require.NoError(t, err)
	size, err := r.ReadLength()
	require.NoError(t, err)
	_, err = r.ReadPayload(size)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReader_InvalidTagBytes(t *testing.T) {
	r := NewReader([]byte{0xff, 0xfe, 0x01, 0x02})
	_, err := r.ReadTag()
	assert.ErrorIs(t, err, ErrInvalidStructure)
}

func TestWriter_BadTag(t *testing.T) {
	w := NewWriter()
	assert.ErrorIs(t, w.WriteTag("TOOLONG"), ErrBadTag)
	assert.ErrorIs(t, w.WriteTag("AB"), ErrBadTag)
}

func TestWriter_LengthOverflow(t *testing.T) {
	w := NewWriter()
	assert.ErrorIs(t, w.WriteLength(math.MaxUint32+1), ErrTooBig)
	assert.ErrorIs(t, w.WriteLength(-1), ErrTooBig)
	assert.NoError(t, w.WriteLength(math.MaxUint32))
}

func TestWriter_AppendOnly(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteChunk("XAAA", []byte{1}))
	first := len(w.Bytes())
	require.NoError(t, w.WriteChunk("XBBB", []byte{2, 3}))
	assert.Equal(t, first+TagSize+LengthSize+2, w.Len())
	assert.Equal(t, "XAAA", string(w.Bytes()[:4]))
}
