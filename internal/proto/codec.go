package proto

import (
	"fmt"

	"github.com/lanclip/lanclip/internal/wire"
)

// Encode serializes a message into an envelope:
// XCOP + length + XVER chunk + one payload chunk. Encoding is deterministic
// for a given message and protocol version.
func Encode(m Message, protocolVer uint32) ([]byte, error) {
	var tag string
	var payload []byte
	var err error

	switch m.Kind {
	case KindAnnounce:
		tag = TagAnnounce
		payload, err = MarshalPeer(m.Peer)
	case KindAck:
		tag = TagAck
		payload, err = MarshalPeer(m.Peer)
	case KindCopy:
		tag = TagCopy
	case KindDisconnect:
		tag = TagDisconnect
	case KindPost:
		tag = TagPost
		payload, err = MarshalClipboard(m.Clip)
	default:
		return nil, ErrNoPayload
	}
	if err != nil {
		return nil, err
	}

	w := wire.NewWriter()
	if err := w.WriteTag(TagEnvelope); err != nil {
		return nil, err
	}
	// Envelope length covers the XVER chunk and the payload chunk.
	innerLen := wire.TagSize + wire.LengthSize + 4 +
		wire.TagSize + wire.LengthSize + len(payload)
	if err := w.WriteLength(innerLen); err != nil {
		return nil, err
	}
	verBytes := []byte{
		byte(protocolVer >> 24), byte(protocolVer >> 16),
		byte(protocolVer >> 8), byte(protocolVer),
	}
	if err := w.WriteChunk(TagVersion, verBytes); err != nil {
		return nil, err
	}
	if err := w.WriteChunk(tag, payload); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Decode parses an envelope and returns the first recognized payload chunk.
// The scan is strictly sequential: a truncated buffer surfaces
// wire.ErrOutOfBounds, an unrecognized tag ErrUnknownHeader. The envelope
// length field is informational only.
func Decode(buf []byte) (Message, error) {
	r := wire.NewReader(buf)
	if err := expectTag(r, TagEnvelope); err != nil {
		return Message{}, err
	}
	if _, err := r.ReadLength(); err != nil {
		return Message{}, err
	}

	for r.Offset() <= r.Len() {
		tag, err := r.ReadTag()
		if err != nil {
			return Message{}, err
		}
		size, err := r.ReadLength()
		if err != nil {
			return Message{}, err
		}
		data, err := r.ReadPayload(size)
		if err != nil {
			return Message{}, err
		}

		switch tag {
		case TagVersion:
			// Version is pinned at 1; nothing to branch on yet.
			continue
		case TagAnnounce:
			peer, err := UnmarshalPeer(data)
			if err != nil {
				return Message{}, err
			}
			return Announce(peer), nil
		case TagAck:
			peer, err := UnmarshalPeer(data)
			if err != nil {
				return Message{}, err
			}
			return Ack(peer), nil
		case TagCopy:
			return CopyRequest(), nil
		case TagDisconnect:
			return Disconnect(), nil
		case TagPost:
			clip, err := UnmarshalClipboard(data)
			if err != nil {
				return Message{}, err
			}
			return Post(clip), nil
		case TagEnvelope:
			// Nested envelopes carry no payload of their own.
			continue
		default:
			return Message{}, fmt.Errorf("%w: %q", ErrUnknownHeader, tag)
		}
	}
	return Message{Kind: KindNone}, nil
}
