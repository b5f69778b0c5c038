package session

import (
	"errors"
	"net"

	"go.uber.org/zap"

	"github.com/lanclip/lanclip/internal/metrics"
	"github.com/lanclip/lanclip/internal/proto"
	"github.com/lanclip/lanclip/internal/resilience"
)

// CommandKind identifies an internal engine command.
type CommandKind uint8

const (
	// CmdStop ends the engine loop.
	CmdStop CommandKind = iota
	// CmdDiscover is a user-triggered table reset and re-announce.
	CmdDiscover
	// CmdNetworkChange records a raw change notification for debouncing.
	CmdNetworkChange
	// CmdSend is a user-triggered outbound request to one peer.
	CmdSend
)

// Command is one element of the engine's internal queue.
type Command struct {
	Kind   CommandKind
	Target *net.UDPAddr // CmdSend only
	Msg    proto.Kind   // CmdSend only
}

var errQueueFull = errors.New("session: command queue full")

// Queue bridges UI events into the engine loop. The engine is the single
// consumer; producers run on foreign goroutines and must never block, so
// enqueueing retries briefly on a full queue and then drops the command.
type Queue struct {
	ch     chan Command
	policy *resilience.Policy
	log    *zap.Logger
}

// NewQueue builds a queue holding up to size pending commands.
func NewQueue(size int, log *zap.Logger) *Queue {
	policy := resilience.DefaultPolicy()
	return &Queue{
		ch:     make(chan Command, size),
		policy: policy,
		log:    log,
	}
}

// Enqueue offers cmd to the engine, retrying with backoff while the queue
// is full. Delivery is best-effort: when the attempt budget runs out the
// command is dropped silently apart from a log line and a counter.
func (q *Queue) Enqueue(cmd Command) {
	err := resilience.Do(q.policy, func() error {
		select {
		case q.ch <- cmd:
			return nil
		default:
			return errQueueFull
		}
	})
	if err != nil {
		metrics.CommandsDroppedTotal.Inc()
		q.log.Warn("command dropped", zap.Uint8("kind", uint8(cmd.Kind)))
	}
}

// Poll drains at most one pending command without blocking.
func (q *Queue) Poll() (Command, bool) {
	select {
	case cmd := <-q.ch:
		return cmd, true
	default:
		return Command{}, false
	}
}
