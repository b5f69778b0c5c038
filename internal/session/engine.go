// Package session implements the discovery and transfer engine: a single
// cooperative loop that owns the peer table and the sockets, decodes inbound
// traffic, and serves user commands from the internal queue. Nothing here
// may block beyond its configured timeout and nothing may terminate the
// process; the only exit path is the Stop command.
package session

import (
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/lanclip/lanclip/internal/clipboard"
	"github.com/lanclip/lanclip/internal/menu"
	"github.com/lanclip/lanclip/internal/metrics"
	"github.com/lanclip/lanclip/internal/proto"
	"github.com/lanclip/lanclip/internal/transport"
)

const (
	directionSent     = "sent"
	directionReceived = "received"
)

// Config tunes the engine loop.
type Config struct {
	// PeerName is announced to other nodes.
	PeerName string
	// Port is the shared UDP/TCP protocol port.
	Port int
	// Tick bounds one loop iteration's sleep.
	Tick time.Duration
	// DebounceWindow is the quiet period required after a network change
	// before sockets are rebuilt.
	DebounceWindow time.Duration
	// RediscoverInterval triggers the periodic reset-and-reannounce.
	RediscoverInterval time.Duration
}

// Deps are the collaborators handed to the engine at construction. The
// engine owns the peer table and sockets exclusively; collaborators are
// only ever called from the engine goroutine.
type Deps struct {
	Log        *zap.Logger
	Clipboard  clipboard.Clipboard
	Menu       menu.Menu
	Binder     Binder
	Dial       Dialer
	Broadcasts func() []net.IP
	Queue      *Queue
}

type peerRecord struct {
	data proto.PeerData
	addr string // full sender address, keys the menu entry
}

// Engine is the session/discovery state machine.
type Engine struct {
	cfg  Config
	deps Deps
	self proto.PeerData

	localIP net.IP
	packet  PacketConn
	stream  StreamListener
	peers   map[string]peerRecord // keyed by peer IP

	lastRediscover time.Time
	changePending  bool
	changeAt       time.Time

	udpBuf []byte
}

// New builds an engine. Run must be called on its own goroutine.
func New(cfg Config, deps Deps) *Engine {
	return &Engine{
		cfg:    cfg,
		deps:   deps,
		self:   proto.PeerData{Name: cfg.PeerName},
		peers:  make(map[string]peerRecord),
		udpBuf: make([]byte, transport.MaxDatagramSize),
	}
}

// Queue returns the command queue producers enqueue into.
func (e *Engine) Queue() *Queue {
	return e.deps.Queue
}

// Run drives the engine until a Stop command arrives. On exit a best-effort
// disconnect is broadcast so peers drop this node promptly.
func (e *Engine) Run() {
	log := e.deps.Log

	if err := e.deps.Menu.AddStatic("Discover", func(menu.Entry) {
		e.deps.Queue.Enqueue(Command{Kind: CmdDiscover})
	}); err != nil {
		log.Error("discover menu entry failed", zap.Error(err))
		return
	}

	// Startup gate: no epoch until a usable address exists and the sockets
	// bind. Stop must remain observable while waiting.
	for !e.bind() {
		if cmd, ok := e.deps.Queue.Poll(); ok && cmd.Kind == CmdStop {
			return
		}
		time.Sleep(e.cfg.Tick)
	}
	e.announce()
	e.lastRediscover = time.Now()

	for {
		time.Sleep(e.cfg.Tick)

		if e.changePending && time.Since(e.changeAt) > e.cfg.DebounceWindow {
			e.recoverEpoch()
		}
		if time.Since(e.lastRediscover) > e.cfg.RediscoverInterval {
			log.Debug("periodic rediscovery")
			e.rediscover()
		}

		cmd, haveCmd := e.deps.Queue.Poll()

		if e.packet != nil {
			if src, data, ok := e.packet.Receive(e.udpBuf); ok {
				e.handleDatagram(src, data)
			}
		}
		if e.stream != nil {
			data, err := e.stream.AcceptAndRead()
			switch {
			case err == nil:
				e.handleStream(data)
			case errors.Is(err, transport.ErrBlocked):
				// Expected idle signal, keep it out of the logs.
			default:
				log.Warn("stream read failed", zap.Error(err))
			}
		}

		if haveCmd && e.handleCommand(cmd) {
			break
		}
	}
	e.shutdown()
}

// bind builds a fresh network epoch. Failure is non-fatal; the caller
// retries on a later tick.
func (e *Engine) bind() bool {
	ip, packet, stream, err := e.deps.Binder.Bind()
	if err != nil {
		e.deps.Log.Warn("bind failed", zap.Error(err))
		metrics.RebindsTotal.WithLabelValues("bind_failure").Inc()
		return false
	}
	e.localIP = ip
	e.packet = packet
	e.stream = stream
	e.deps.Log.Info("listeners bound", zap.Stringer("local_ip", ip))
	return true
}

func (e *Engine) closeSockets() {
	if e.packet != nil {
		_ = e.packet.Close()
		e.packet = nil
	}
	if e.stream != nil {
		_ = e.stream.Close()
		e.stream = nil
	}
}

// recoverEpoch tears the current epoch down after a debounced network
// change and rebuilds it. On rebind failure the change stays pending so the
// next tick retries.
func (e *Engine) recoverEpoch() {
	e.deps.Log.Info("network change debounced, rebinding")
	e.closeSockets()
	e.clearPeers()
	metrics.RebindsTotal.WithLabelValues("network_change").Inc()
	if !e.bind() {
		return
	}
	e.changePending = false
	e.announce()
	e.lastRediscover = time.Now()
}

func (e *Engine) clearPeers() {
	e.peers = make(map[string]peerRecord)
	metrics.PeersActive.Set(0)
	if err := e.deps.Menu.RemoveAllDynamic(); err != nil {
		e.deps.Log.Warn("menu clear failed", zap.Error(err))
	}
}

// rediscover resets the peer table and re-announces.
func (e *Engine) rediscover() {
	e.clearPeers()
	e.announce()
	e.lastRediscover = time.Now()
}

// announce broadcasts this node's identity to every discovery target.
func (e *Engine) announce() {
	if e.packet == nil {
		return
	}
	data, err := proto.Encode(proto.Announce(e.self), proto.Version)
	if err != nil {
		e.deps.Log.Error("announce encode failed", zap.Error(err))
		return
	}
	for _, ip := range e.deps.Broadcasts() {
		e.packet.Send(&net.UDPAddr{IP: ip, Port: e.cfg.Port}, data)
	}
	metrics.MessagesTotal.WithLabelValues(proto.KindAnnounce.String(), directionSent).Inc()
}

func (e *Engine) handleDatagram(src *net.UDPAddr, data []byte) {
	// Our own broadcasts loop back; they are not peers.
	if src.IP.Equal(e.localIP) || src.IP.IsLoopback() {
		return
	}
	msg, err := proto.Decode(data)
	if err != nil {
		metrics.DecodeErrorsTotal.Inc()
		e.deps.Log.Warn("datagram decode failed", zap.Stringer("from", src), zap.Error(err))
		return
	}
	metrics.MessagesTotal.WithLabelValues(msg.Kind.String(), directionReceived).Inc()

	switch msg.Kind {
	case proto.KindAnnounce:
		e.deps.Log.Info("peer announced", zap.String("peer", msg.Peer.Name), zap.Stringer("from", src))
		e.ackPeer(src)
		e.addPeer(src, msg.Peer)
	case proto.KindAck:
		e.deps.Log.Info("peer acknowledged", zap.String("peer", msg.Peer.Name), zap.Stringer("from", src))
		e.addPeer(src, msg.Peer)
	case proto.KindDisconnect:
		e.removePeer(src)
	case proto.KindCopy:
		e.serveCopy(src)
	default:
		// Payload posts arrive over TCP only; anything else is noise.
		e.deps.Log.Debug("datagram ignored", zap.Stringer("kind", msg.Kind), zap.Stringer("from", src))
	}
}

// ackPeer unicasts our identity back to an announcing peer.
func (e *Engine) ackPeer(src *net.UDPAddr) {
	data, err := proto.Encode(proto.Ack(e.self), proto.Version)
	if err != nil {
		e.deps.Log.Error("ack encode failed", zap.Error(err))
		return
	}
	e.packet.Send(src, data)
	metrics.MessagesTotal.WithLabelValues(proto.KindAck.String(), directionSent).Inc()
}

// addPeer records a newly seen peer and exposes its copy menu entry.
// Already-known peers are left untouched so entries never duplicate.
func (e *Engine) addPeer(src *net.UDPAddr, peer proto.PeerData) {
	key := src.IP.String()
	if _, known := e.peers[key]; known {
		return
	}
	addr := src.String()
	e.peers[key] = peerRecord{data: peer, addr: addr}
	metrics.PeersActive.Set(float64(len(e.peers)))
	if err := e.deps.Menu.AddDynamic("copy from "+peer.Name, addr, e.copySelected); err != nil {
		e.deps.Log.Warn("menu entry failed", zap.String("peer", peer.Name), zap.Error(err))
	}
}

func (e *Engine) removePeer(src *net.UDPAddr) {
	key := src.IP.String()
	rec, known := e.peers[key]
	if !known {
		return
	}
	delete(e.peers, key)
	metrics.PeersActive.Set(float64(len(e.peers)))
	if err := e.deps.Menu.RemoveDynamic(rec.addr); err != nil {
		e.deps.Log.Warn("menu removal failed", zap.String("addr", rec.addr), zap.Error(err))
	}
	e.deps.Log.Info("peer disconnected", zap.String("peer", rec.data.Name))
}

// copySelected maps a menu selection back onto a copy-request command.
// It runs on the UI goroutine, so it only enqueues.
func (e *Engine) copySelected(entry menu.Entry) {
	target, err := net.ResolveUDPAddr("udp", entry.Addr)
	if err != nil {
		e.deps.Log.Warn("bad menu target", zap.String("addr", entry.Addr), zap.Error(err))
		return
	}
	e.deps.Queue.Enqueue(Command{Kind: CmdSend, Target: target, Msg: proto.KindCopy})
}

// serveCopy answers a copy request: read the local clipboard and push it to
// the requester over a direct TCP connection. Failures are logged only.
func (e *Engine) serveCopy(src *net.UDPAddr) {
	clip, err := e.deps.Clipboard.Read()
	if err != nil {
		e.deps.Log.Error("clipboard read failed", zap.Error(err))
		return
	}
	data, err := proto.Encode(proto.Post(clip), proto.Version)
	if err != nil {
		e.deps.Log.Error("post encode failed", zap.Error(err))
		return
	}
	target := &net.TCPAddr{IP: src.IP, Port: e.cfg.Port}
	if err := e.deps.Dial(target, data); err != nil {
		e.deps.Log.Error("post delivery failed", zap.Stringer("target", target), zap.Error(err))
		return
	}
	metrics.MessagesTotal.WithLabelValues(proto.KindPost.String(), directionSent).Inc()
	metrics.TransferBytesTotal.WithLabelValues(directionSent).Add(float64(len(data)))
}

// handleStream processes one accepted TCP payload. Inbound TCP carries
// clipboard posts exclusively; anything else is dropped.
func (e *Engine) handleStream(data []byte) {
	msg, err := proto.Decode(data)
	if err != nil {
		metrics.DecodeErrorsTotal.Inc()
		e.deps.Log.Warn("stream decode failed", zap.Error(err))
		return
	}
	if msg.Kind != proto.KindPost {
		e.deps.Log.Warn("unexpected stream message", zap.Stringer("kind", msg.Kind))
		return
	}
	metrics.MessagesTotal.WithLabelValues(msg.Kind.String(), directionReceived).Inc()
	metrics.TransferBytesTotal.WithLabelValues(directionReceived).Add(float64(len(data)))
	if err := e.deps.Clipboard.Write(msg.Clip); err != nil {
		e.deps.Log.Error("clipboard write failed", zap.Error(err))
	}
}

// handleCommand dispatches one drained command; true means stop.
func (e *Engine) handleCommand(cmd Command) bool {
	switch cmd.Kind {
	case CmdStop:
		return true
	case CmdDiscover:
		e.deps.Log.Info("discovery requested")
		e.rediscover()
	case CmdNetworkChange:
		e.changePending = true
		e.changeAt = time.Now()
	case CmdSend:
		if cmd.Msg != proto.KindCopy || cmd.Target == nil {
			return false
		}
		data, err := proto.Encode(proto.CopyRequest(), proto.Version)
		if err != nil {
			e.deps.Log.Error("copy request encode failed", zap.Error(err))
			return false
		}
		if e.packet != nil {
			e.packet.Send(cmd.Target, data)
			metrics.MessagesTotal.WithLabelValues(proto.KindCopy.String(), directionSent).Inc()
		}
	}
	return false
}

// shutdown broadcasts a disconnect so peers drop us without waiting for
// their next rediscovery, then releases the sockets.
func (e *Engine) shutdown() {
	if e.packet != nil {
		if data, err := proto.Encode(proto.Disconnect(), proto.Version); err == nil {
			for _, ip := range e.deps.Broadcasts() {
				e.packet.Send(&net.UDPAddr{IP: ip, Port: e.cfg.Port}, data)
			}
			metrics.MessagesTotal.WithLabelValues(proto.KindDisconnect.String(), directionSent).Inc()
		}
	}
	e.closeSockets()
	e.deps.Log.Info("engine stopped")
}
