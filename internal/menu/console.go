package menu

import (
	"sync"

	"github.com/pterm/pterm"
)

type consoleEntry struct {
	Entry
	handler Handler
	dynamic bool
}

// Console is a terminal menu built on pterm's interactive select. It is the
// UI worker: Run blocks until Stop. Entries are mutated from the engine
// goroutine, so the entry list is mutex-guarded.
type Console struct {
	mu      sync.Mutex
	entries []consoleEntry
	stopped bool
	quit    string
}

// NewConsole returns a menu whose quit entry carries quitLabel.
func NewConsole(quitLabel string) *Console {
	return &Console{quit: quitLabel}
}

// AddStatic appends a permanent entry.
func (c *Console) AddStatic(label string, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, consoleEntry{
		Entry:   Entry{Label: label},
		handler: h,
	})
	return nil
}

// AddDynamic appends a per-peer entry tagged with its network address.
func (c *Console) AddDynamic(label, addr string, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, consoleEntry{
		Entry:   Entry{Label: label, Addr: addr},
		handler: h,
		dynamic: true,
	})
	return nil
}

// RemoveDynamic drops the dynamic entry matching addr.
func (c *Console) RemoveDynamic(addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.dynamic && e.Addr == addr {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// RemoveAllDynamic drops every dynamic entry.
func (c *Console) RemoveAllDynamic() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.entries[:0]
	for _, e := range c.entries {
		if !e.dynamic {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	return nil
}

// Stop makes Run return after the current prompt.
func (c *Console) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

// Run drives the interactive prompt until the quit entry is chosen or Stop
// is called. This is the blocking UI loop of the process.
func (c *Console) Run() {
	for {
		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			return
		}
		labels := make([]string, 0, len(c.entries)+1)
		for _, e := range c.entries {
			labels = append(labels, e.Label)
		}
		labels = append(labels, c.quit)
		c.mu.Unlock()

		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions(labels).
			Show("lanclip")
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if choice == c.quit {
			return
		}

		c.mu.Lock()
		var handler Handler
		var selected Entry
		for _, e := range c.entries {
			if e.Label == choice {
				handler = e.handler
				selected = e.Entry
				break
			}
		}
		c.mu.Unlock()
		if handler != nil {
			handler(selected)
		}
	}
}
