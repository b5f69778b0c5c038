package proto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanclip/lanclip/internal/wire"
)

func TestPeerRoundTrip(t *testing.T) {
	names := []string{
		"",
		"a",
		"workstation-42",
		"Mašína", // multi-byte UTF-8
		"日本語のホスト",
		strings.Repeat("x", 255),
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			raw, err := MarshalPeer(PeerData{Name: name})
			require.NoError(t, err)
			got, err := UnmarshalPeer(raw)
			require.NoError(t, err)
			assert.Equal(t, name, got.Name)
		})
	}
}

func TestPeerNameTooLong(t *testing.T) {
	_, err := MarshalPeer(PeerData{Name: strings.Repeat("x", 256)})
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestPeerTruncated(t *testing.T) {
	_, err := UnmarshalPeer(nil)
	assert.ErrorIs(t, err, wire.ErrOutOfBounds)

	// Declared length longer than the remaining bytes.
	_, err = UnmarshalPeer([]byte{10, 'a', 'b'})
	assert.ErrorIs(t, err, wire.ErrOutOfBounds)
}

func TestPeerInvalidUTF8(t *testing.T) {
	_, err := UnmarshalPeer([]byte{2, 0xff, 0xfe})
	assert.ErrorIs(t, err, wire.ErrInvalidStructure)
}

func TestClipboardRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data ClipboardData
	}{
		{"plain text", NewString(StringUTF8, []byte("hello"))},
		{"plain empty", NewString(StringUTF8, nil)},
		{"html", NewString(StringHTML, []byte("<b>bold</b>"))},
		{"html empty", NewString(StringHTML, nil)},
		{"file", NewFile("notes.txt", []byte{0, 1, 2, 255})},
		{"file empty", NewFile("empty.bin", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := MarshalClipboard(tt.data)
			require.NoError(t, err)
			got, err := UnmarshalClipboard(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.data.Kind, got.Kind)
			assert.Equal(t, tt.data.StringType, got.StringType)
			assert.Equal(t, tt.data.Filename, got.Filename)
			assert.Equal(t, tt.data.Data, got.Data)
		})
	}
}

func TestClipboardUnknownOuterTag(t *testing.T) {
	w := wire.NewWriter()
	require.NoError(t, w.WriteChunk("XBAD", []byte("junk")))
	_, err := UnmarshalClipboard(w.Bytes())
	assert.ErrorIs(t, err, ErrUnknownHeader)
}

func TestClipboardBadStringType(t *testing.T) {
	inner := wire.NewWriter()
	require.NoError(t, inner.WriteChunk(TagStrType, []byte("NOPE")))
	require.NoError(t, inner.WriteChunk(TagData, []byte("x")))
	outer := wire.NewWriter()
	require.NoError(t, outer.WriteChunk(TagString, inner.Bytes()))

	_, err := UnmarshalClipboard(outer.Bytes())
	assert.ErrorIs(t, err, wire.ErrInvalidStructure)
}

func TestClipboardTruncated(t *testing.T) {
	raw, err := MarshalClipboard(NewFile("f.bin", []byte("0123456789")))
	require.NoError(t, err)
	for cut := 0; cut < len(raw); cut++ {
		_, err := UnmarshalClipboard(raw[:cut])
		assert.Errorf(t, err, "prefix of %d bytes must not parse", cut)
	}
}
