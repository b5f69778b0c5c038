// Package resilience holds the bounded retry-with-backoff helper shared by
// the command-queue producers. Enqueue is best-effort: after the attempt
// budget is spent the caller gives up silently instead of blocking.
package resilience

import (
	"math"
	"math/rand"
	"time"
)

// Policy parameterizes bounded retries.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
	OnRetry      func(attempt int, err error)
}

// DefaultPolicy matches the enqueue contract: five attempts, exponential
// backoff from 100ms.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Do runs fn up to MaxAttempts times, sleeping between attempts.
// The last error is returned when the budget runs out.
func Do(policy *Policy, fn func() error) error {
	if policy == nil {
		policy = DefaultPolicy()
	}
	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := delayFor(policy, attempt)
			if policy.Jitter {
				delay = time.Duration(float64(delay) * (0.8 + 0.4*rand.Float64()))
			}
			time.Sleep(delay)
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, lastErr)
		}
	}
	return lastErr
}

func delayFor(policy *Policy, attempt int) time.Duration {
	delay := time.Duration(float64(policy.InitialDelay) * math.Pow(policy.Multiplier, float64(attempt-1)))
	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}
