// Package transport provides the socket adapters the session engine drives:
// timeout-bounded UDP datagram send/receive, non-blocking TCP accept with
// read-to-end, and short-lived outbound TCP delivery. Discovery traffic is
// lossy by design, so datagram failures are logged and swallowed; only TCP
// connect/write failures propagate to the caller.
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// ErrBlocked is the expected "nothing ready" signal from non-blocking
// operations. It is not an error condition and must not be logged as one.
var ErrBlocked = errors.New("transport: operation would block")

// MaxDatagramSize bounds a single discovery datagram.
const MaxDatagramSize = 1024

// PacketConn is a discovery socket bound to the shared protocol port.
type PacketConn struct {
	conn        *net.UDPConn
	readTimeout time.Duration
	log         *zap.Logger
}

// BindPacket binds the UDP discovery socket on all interfaces.
// Read and write timeouts keep every engine-loop step bounded.
func BindPacket(port int, readTimeout time.Duration, log *zap.Logger) (*PacketConn, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("bind discovery socket: %w", err)
	}
	log.Info("discovery socket bound", zap.Stringer("addr", conn.LocalAddr()))
	return &PacketConn{conn: conn, readTimeout: readTimeout, log: log}, nil
}

// Receive attempts one timeout-bounded datagram read into buf.
// A timeout yields ok=false, never an error; other read failures are logged
// and also yield ok=false.
func (p *PacketConn) Receive(buf []byte) (*net.UDPAddr, []byte, bool) {
	if err := p.conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
		p.log.Debug("set read deadline failed", zap.Error(err))
		return nil, nil, false
	}
	n, src, err := p.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() {
			p.log.Debug("datagram read failed", zap.Error(err))
		}
		return nil, nil, false
	}
	if n < 1 {
		return nil, nil, false
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return src, out, true
}

// Send delivers one datagram best-effort. Failures are logged, never
// propagated: discovery traffic is unreliable by design.
func (p *PacketConn) Send(target *net.UDPAddr, data []byte) {
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.readTimeout)); err != nil {
		p.log.Debug("set write deadline failed", zap.Error(err))
		return
	}
	n, err := p.conn.WriteToUDP(data, target)
	if err != nil {
		p.log.Debug("datagram send failed", zap.Stringer("target", target), zap.Error(err))
		return
	}
	p.log.Debug("datagram sent", zap.Stringer("target", target), zap.String("size", FormatBytes(n)))
}

// LocalPort reports the bound port.
func (p *PacketConn) LocalPort() int {
	return p.conn.LocalAddr().(*net.UDPAddr).Port
}

// Close releases the socket.
func (p *PacketConn) Close() error {
	return p.conn.Close()
}

// FormatBytes renders a byte count for transfer logs.
func FormatBytes(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
