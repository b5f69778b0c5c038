package proto

import (
	"fmt"
	"unicode/utf8"

	"github.com/lanclip/lanclip/internal/wire"
)

// MarshalPeer serializes PeerData as a 1-byte length prefix followed by the
// raw UTF-8 name.
func MarshalPeer(p PeerData) ([]byte, error) {
	if len(p.Name) > 255 {
		return nil, ErrNameTooLong
	}
	out := make([]byte, 0, 1+len(p.Name))
	out = append(out, byte(len(p.Name)))
	out = append(out, p.Name...)
	return out, nil
}

// UnmarshalPeer parses a length-prefixed peer name.
func UnmarshalPeer(data []byte) (PeerData, error) {
	if len(data) < 1 {
		return PeerData{}, wire.ErrOutOfBounds
	}
	nameLen := int(data[0])
	if len(data) < 1+nameLen {
		return PeerData{}, wire.ErrOutOfBounds
	}
	raw := data[1 : 1+nameLen]
	if !utf8.Valid(raw) {
		return PeerData{}, wire.ErrInvalidStructure
	}
	return PeerData{Name: string(raw)}, nil
}

// MarshalClipboard serializes clipboard data as a nested chunk tree:
// XSTR wrapping XTYP+XDAT for strings, XFIL wrapping XFME+XDAT for files.
func MarshalClipboard(c ClipboardData) ([]byte, error) {
	inner := wire.NewWriter()
	outer := wire.NewWriter()
	switch c.Kind {
	case ClipString:
		if err := inner.WriteChunk(TagStrType, []byte(c.StringType.String())); err != nil {
			return nil, err
		}
		if err := inner.WriteChunk(TagData, c.Data); err != nil {
			return nil, err
		}
		if err := outer.WriteChunk(TagString, inner.Bytes()); err != nil {
			return nil, err
		}
	case ClipFile:
		if err := inner.WriteChunk(TagFilename, []byte(c.Filename)); err != nil {
			return nil, err
		}
		if err := inner.WriteChunk(TagData, c.Data); err != nil {
			return nil, err
		}
		if err := outer.WriteChunk(TagFile, inner.Bytes()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: clipboard kind %d", ErrUnknownHeader, c.Kind)
	}
	return outer.Bytes(), nil
}

// UnmarshalClipboard parses a clipboard chunk tree produced by
// MarshalClipboard.
func UnmarshalClipboard(data []byte) (ClipboardData, error) {
	r := wire.NewReader(data)
	tag, err := r.ReadTag()
	if err != nil {
		return ClipboardData{}, err
	}
	if _, err := r.ReadLength(); err != nil {
		return ClipboardData{}, err
	}

	switch tag {
	case TagString:
		if err := expectTag(r, TagStrType); err != nil {
			return ClipboardData{}, err
		}
		typeRaw, err := readChunkPayload(r)
		if err != nil {
			return ClipboardData{}, err
		}
		strType, ok := stringTypeFromWire(string(typeRaw))
		if !ok {
			return ClipboardData{}, fmt.Errorf("%w: string type %q", wire.ErrInvalidStructure, typeRaw)
		}
		if err := expectTag(r, TagData); err != nil {
			return ClipboardData{}, err
		}
		payload, err := readChunkPayload(r)
		if err != nil {
			return ClipboardData{}, err
		}
		return NewString(strType, payload), nil

	case TagFile:
		if err := expectTag(r, TagFilename); err != nil {
			return ClipboardData{}, err
		}
		nameRaw, err := readChunkPayload(r)
		if err != nil {
			return ClipboardData{}, err
		}
		if !utf8.Valid(nameRaw) {
			return ClipboardData{}, wire.ErrInvalidStructure
		}
		if err := expectTag(r, TagData); err != nil {
			return ClipboardData{}, err
		}
		payload, err := readChunkPayload(r)
		if err != nil {
			return ClipboardData{}, err
		}
		return NewFile(string(nameRaw), payload), nil

	default:
		return ClipboardData{}, fmt.Errorf("%w: clipboard tag %q", ErrUnknownHeader, tag)
	}
}

func expectTag(r *wire.Reader, want string) error {
	tag, err := r.ReadTag()
	if err != nil {
		return err
	}
	if tag != want {
		return fmt.Errorf("%w: expected %q, got %q", ErrUnknownHeader, want, tag)
	}
	return nil
}

func readChunkPayload(r *wire.Reader) ([]byte, error) {
	size, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	return r.ReadPayload(size)
}
