package menu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryLabels(c *Console) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Label)
	}
	return out
}

func TestConsoleEntryLifecycle(t *testing.T) {
	c := NewConsole("Quit")
	require.NoError(t, c.AddStatic("Discover", nil))
	require.NoError(t, c.AddDynamic("copy from alpha", "192.168.1.20:53300", nil))
	require.NoError(t, c.AddDynamic("copy from beta", "192.168.1.30:53300", nil))
	assert.Equal(t, []string{"Discover", "copy from alpha", "copy from beta"}, entryLabels(c))

	require.NoError(t, c.RemoveDynamic("192.168.1.20:53300"))
	assert.Equal(t, []string{"Discover", "copy from beta"}, entryLabels(c))

	assert.ErrorIs(t, c.RemoveDynamic("192.168.1.20:53300"), ErrNotFound)
}

func TestConsoleRemoveAllKeepsStatics(t *testing.T) {
	c := NewConsole("Quit")
	require.NoError(t, c.AddStatic("Discover", nil))
	require.NoError(t, c.AddDynamic("copy from alpha", "192.168.1.20:53300", nil))
	require.NoError(t, c.AddDynamic("copy from beta", "192.168.1.30:53300", nil))

	require.NoError(t, c.RemoveAllDynamic())
	assert.Equal(t, []string{"Discover"}, entryLabels(c))

	// Idempotent on an already-clean list.
	require.NoError(t, c.RemoveAllDynamic())
	assert.Equal(t, []string{"Discover"}, entryLabels(c))
}

func TestConsoleStaticNotRemovable(t *testing.T) {
	c := NewConsole("Quit")
	require.NoError(t, c.AddStatic("Discover", nil))
	assert.ErrorIs(t, c.RemoveDynamic("Discover"), ErrNotFound)
}

func TestConsoleRunReturnsWhenStopped(t *testing.T) {
	c := NewConsole("Quit")
	c.Stop()

	done := make(chan struct{})
	go func() {
		c.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not observe Stop")
	}
}
