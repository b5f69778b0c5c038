package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// StreamListener accepts point-to-point clipboard transfers.
type StreamListener struct {
	listener      *net.TCPListener
	acceptTimeout time.Duration
	readTimeout   time.Duration
	log           *zap.Logger
}

// BindStream binds the TCP transfer listener on all interfaces.
func BindStream(port int, acceptTimeout, readTimeout time.Duration, log *zap.Logger) (*StreamListener, error) {
	addr := &net.TCPAddr{IP: net.IPv4zero, Port: port}
	listener, err := net.ListenTCP("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("bind stream listener: %w", err)
	}
	log.Info("stream listener bound", zap.Stringer("addr", listener.Addr()))
	return &StreamListener{
		listener:      listener,
		acceptTimeout: acceptTimeout,
		readTimeout:   readTimeout,
		log:           log,
	}, nil
}

// AcceptAndRead accepts at most one pending connection and reads it to end
// of stream. ErrBlocked means no connection was waiting; any other error is
// a genuine read failure.
func (s *StreamListener) AcceptAndRead() ([]byte, error) {
	if err := s.listener.SetDeadline(time.Now().Add(s.acceptTimeout)); err != nil {
		return nil, fmt.Errorf("set accept deadline: %w", err)
	}
	conn, err := s.listener.AcceptTCP()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, ErrBlocked
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("stream read: %w", err)
		}
	}
	s.log.Debug("stream received",
		zap.Stringer("from", conn.RemoteAddr()),
		zap.String("size", FormatBytes(len(out))))
	return out, nil
}

// LocalPort reports the bound port.
func (s *StreamListener) LocalPort() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Close releases the listener.
func (s *StreamListener) Close() error {
	return s.listener.Close()
}

// ConnectAndSend opens a short-lived TCP connection to target, writes the
// full payload looping over partial writes, and closes the stream. This is
// the only transport path whose failure is reported to the caller.
func ConnectAndSend(target *net.TCPAddr, data []byte, timeout time.Duration, log *zap.Logger) error {
	conn, err := net.DialTimeout("tcp", target.String(), timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", target, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	written := 0
	for written < len(data) {
		n, err := conn.Write(data[written:])
		if err != nil {
			return fmt.Errorf("write %s after %d/%d bytes: %w", target, written, len(data), err)
		}
		written += n
	}
	log.Debug("stream sent", zap.Stringer("target", target), zap.String("size", FormatBytes(written)))
	return nil
}
