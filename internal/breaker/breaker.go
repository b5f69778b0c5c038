// Package breaker guards the outbound transfer path. A peer that stops
// accepting TCP posts would otherwise cost a full dial timeout on every
// copy; the breaker fails those attempts fast until the peer recovers.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker rejects an attempt outright.
var ErrOpen = errors.New("breaker: open")

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Counts tracks attempt outcomes within the current generation.
type Counts struct {
	Attempts             uint32
	Successes            uint32
	Failures             uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) onAttempt() {
	c.Attempts++
}

func (c *Counts) onSuccess() {
	c.Successes++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.Failures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Settings configures a Breaker. Zero values get sane defaults.
type Settings struct {
	Name string
	// MaxProbes bounds concurrent attempts while half-open.
	MaxProbes uint32
	// Interval clears closed-state counts periodically; zero disables.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ReadyToTrip decides when the closed breaker opens.
	ReadyToTrip func(Counts) bool
	// OnStateChange observes transitions, typically for logging.
	OnStateChange func(name string, from, to State)
}

// Breaker is a mutex-guarded circuit state machine.
type Breaker struct {
	name          string
	maxProbes     uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(Counts) bool
	onStateChange func(name string, from, to State)

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New builds a breaker from st.
func New(st Settings) *Breaker {
	b := &Breaker{
		name:          st.Name,
		maxProbes:     st.MaxProbes,
		interval:      st.Interval,
		timeout:       st.Timeout,
		readyToTrip:   st.ReadyToTrip,
		onStateChange: st.OnStateChange,
	}
	if b.maxProbes == 0 {
		b.maxProbes = 1
	}
	if b.timeout == 0 {
		b.timeout = 30 * time.Second
	}
	if b.readyToTrip == nil {
		b.readyToTrip = func(c Counts) bool {
			return c.ConsecutiveFailures >= 3
		}
	}
	b.newGeneration(time.Now())
	return b
}

// Name returns the breaker's name.
func (b *Breaker) Name() string {
	return b.name
}

// State reports the current position, advancing open to half-open when the
// timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(time.Now())
}

// Do runs fn unless the breaker is open. fn's error feeds the state machine
// and is returned as-is.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	now := time.Now()
	state := b.currentState(now)
	if state == StateOpen || (state == StateHalfOpen && b.counts.Attempts >= b.maxProbes) {
		b.mu.Unlock()
		return ErrOpen
	}
	generation := b.generation
	b.counts.onAttempt()
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	// A state change during fn starts a new generation; stale outcomes
	// must not feed it.
	if b.generation != generation {
		return err
	}
	if err != nil {
		b.counts.onFailure()
		switch b.state {
		case StateClosed:
			if b.readyToTrip(b.counts) {
				b.setState(StateOpen, time.Now())
			}
		case StateHalfOpen:
			b.setState(StateOpen, time.Now())
		}
		return err
	}
	b.counts.onSuccess()
	if b.state == StateHalfOpen {
		b.setState(StateClosed, time.Now())
	}
	return nil
}

func (b *Breaker) currentState(now time.Time) State {
	switch b.state {
	case StateClosed:
		if b.interval > 0 && !b.expiry.IsZero() && b.expiry.Before(now) {
			b.newGeneration(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.setState(StateHalfOpen, now)
		}
	}
	return b.state
}

func (b *Breaker) setState(next State, now time.Time) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.newGeneration(now)
	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, next)
	}
}

func (b *Breaker) newGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}
	switch b.state {
	case StateClosed:
		if b.interval > 0 {
			b.expiry = now.Add(b.interval)
		} else {
			b.expiry = time.Time{}
		}
	case StateOpen:
		b.expiry = now.Add(b.timeout)
	default:
		b.expiry = time.Time{}
	}
}
