package session

import "net"

// PacketConn is the discovery socket capability the engine drives.
// *transport.PacketConn is the production implementation.
type PacketConn interface {
	// Receive attempts one timeout-bounded datagram read.
	Receive(buf []byte) (*net.UDPAddr, []byte, bool)
	// Send delivers one datagram best-effort.
	Send(target *net.UDPAddr, data []byte)
	Close() error
}

// StreamListener is the transfer listener capability.
// *transport.StreamListener is the production implementation.
type StreamListener interface {
	// AcceptAndRead accepts at most one pending connection and reads it to
	// end of stream; transport.ErrBlocked means nothing was waiting.
	AcceptAndRead() ([]byte, error)
	Close() error
}

// Binder builds one network epoch: the local address plus freshly bound
// discovery and transfer sockets. The engine calls it at startup and again
// after every debounced network change.
type Binder interface {
	Bind() (net.IP, PacketConn, StreamListener, error)
}

// Dialer delivers an encoded message over a short-lived TCP connection.
type Dialer func(target *net.TCPAddr, data []byte) error
