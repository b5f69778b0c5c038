package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDial = errors.New("dial failed")

func failing() error { return errDial }
func passing() error { return nil }

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := New(Settings{Name: "post"})
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Do(passing))
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := New(Settings{Name: "post", Timeout: time.Minute})
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Do(failing), errDial)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(passing), ErrOpen, "open breaker fails fast")
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	b := New(Settings{Name: "post", Timeout: time.Minute})
	_ = b.Do(failing)
	_ = b.Do(failing)
	require.NoError(t, b.Do(passing))
	_ = b.Do(failing)
	_ = b.Do(failing)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := New(Settings{Name: "post", Timeout: 10 * time.Millisecond})
	for i := 0; i < 3; i++ {
		_ = b.Do(failing)
	}
	require.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(passing))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New(Settings{Name: "post", Timeout: 10 * time.Millisecond})
	for i := 0; i < 3; i++ {
		_ = b.Do(failing)
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StateHalfOpen, b.State())

	assert.ErrorIs(t, b.Do(failing), errDial)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerCustomTrip(t *testing.T) {
	b := New(Settings{
		Name:        "post",
		Timeout:     time.Minute,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})
	_ = b.Do(failing)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStateChangeCallback(t *testing.T) {
	var transitions []string
	b := New(Settings{
		Name:    "post",
		Timeout: time.Minute,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})
	for i := 0; i < 3; i++ {
		_ = b.Do(failing)
	}
	assert.Equal(t, []string{"closed>open"}, transitions)
}
