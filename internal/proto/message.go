// Package proto maps domain messages onto the chunked wire format.
//
// The outermost chunk is always the XCOP envelope. It wraps an XVER chunk
// carrying the protocol version and exactly one payload chunk whose tag
// identifies the message kind. Peer names travel with a 1-byte length
// prefix; clipboard payloads are nested chunk trees (XSTR/XFIL).
package proto

import "errors"

// Version is the protocol version carried in every XVER chunk.
const Version uint32 = 1

// Envelope and payload chunk tags.
const (
	TagEnvelope   = "XCOP"
	TagVersion    = "XVER"
	TagAnnounce   = "XCON"
	TagAck        = "XACN"
	TagCopy       = "XCPY"
	TagPost       = "XPST"
	TagDisconnect = "XDIS"
)

// Clipboard payload inner chunk tags.
const (
	TagString   = "XSTR"
	TagStrType  = "XTYP"
	TagData     = "XDAT"
	TagFile     = "XFIL"
	TagFilename = "XFME"
)

var (
	// ErrUnknownHeader means a tag is not in the recognized set.
	ErrUnknownHeader = errors.New("proto: unknown header")
	// ErrNoPayload means the message kind carries nothing to encode.
	ErrNoPayload = errors.New("proto: message kind has no encodable payload")
	// ErrNameTooLong means a peer name exceeds the 1-byte length prefix.
	ErrNameTooLong = errors.New("proto: peer name longer than 255 bytes")
)

// Kind identifies a decoded message.
type Kind uint8

const (
	// KindNone is the sentinel for "decoded but nothing actionable".
	KindNone Kind = iota
	// KindAnnounce is a peer announcing itself (XCON).
	KindAnnounce
	// KindAck acknowledges an announce (XACN).
	KindAck
	// KindCopy asks the receiver to push its clipboard back (XCPY).
	KindCopy
	// KindPost delivers clipboard contents (XPST).
	KindPost
	// KindDisconnect tells peers to drop the sender (XDIS).
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindAnnounce:
		return "announce"
	case KindAck:
		return "ack"
	case KindCopy:
		return "copy"
	case KindPost:
		return "post"
	case KindDisconnect:
		return "disconnect"
	default:
		return "none"
	}
}

// PeerData is the announced identity of a node.
type PeerData struct {
	Name string
}

// StringType distinguishes textual clipboard flavors on the wire.
type StringType uint8

const (
	// StringUTF8 is plain UTF-8 text ("UTF8P" on the wire).
	StringUTF8 StringType = iota
	// StringHTML is HTML markup ("HTML" on the wire).
	StringHTML
)

func (s StringType) String() string {
	if s == StringHTML {
		return "HTML"
	}
	return "UTF8P"
}

func stringTypeFromWire(s string) (StringType, bool) {
	switch s {
	case "UTF8P":
		return StringUTF8, true
	case "HTML":
		return StringHTML, true
	default:
		return 0, false
	}
}

// ClipKind distinguishes clipboard payload variants.
type ClipKind uint8

const (
	// ClipString is textual clipboard content (XSTR).
	ClipString ClipKind = iota
	// ClipFile is a named file (XFIL).
	ClipFile
)

// ClipboardData is a clipboard payload: either a typed string or a file.
type ClipboardData struct {
	Kind       ClipKind
	StringType StringType // meaningful when Kind == ClipString
	Filename   string     // meaningful when Kind == ClipFile
	Data       []byte
}

// NewString returns textual clipboard data.
func NewString(t StringType, data []byte) ClipboardData {
	return ClipboardData{Kind: ClipString, StringType: t, Data: data}
}

// NewFile returns file clipboard data.
func NewFile(name string, data []byte) ClipboardData {
	return ClipboardData{Kind: ClipFile, Filename: name, Data: data}
}

// Message is one decoded protocol message.
// Peer is set for announce/ack, Clip for post; the rest carry nothing.
type Message struct {
	Kind Kind
	Peer PeerData
	Clip ClipboardData
}

// Announce builds an XCON message.
func Announce(p PeerData) Message { return Message{Kind: KindAnnounce, Peer: p} }

// Ack builds an XACN message.
func Ack(p PeerData) Message { return Message{Kind: KindAck, Peer: p} }

// CopyRequest builds an XCPY message.
func CopyRequest() Message { return Message{Kind: KindCopy} }

// Post builds an XPST message.
func Post(c ClipboardData) Message { return Message{Kind: KindPost, Clip: c} }

// Disconnect builds an XDIS message.
func Disconnect() Message { return Message{Kind: KindDisconnect} }
