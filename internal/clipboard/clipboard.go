// Package clipboard is the engine's view of the platform clipboard. The
// engine only consumes the Clipboard interface; System is the one concrete
// implementation, shelling out to the OS clipboard tools.
package clipboard

import (
	"errors"
	"strings"

	"github.com/lanclip/lanclip/internal/proto"
)

var (
	// ErrRead means the platform clipboard could not be read.
	ErrRead = errors.New("clipboard: read failed")
	// ErrWrite means the platform clipboard could not be written.
	ErrWrite = errors.New("clipboard: write failed")
	// ErrNoTool means no supported clipboard command exists on this host.
	ErrNoTool = errors.New("clipboard: no clipboard tool available")
)

// Clipboard reads and writes clipboard contents. Implementations must be
// safe to call synchronously from the engine worker.
type Clipboard interface {
	Read() (proto.ClipboardData, error)
	Write(proto.ClipboardData) error
}

// StripHTML returns the text content of an HTML fragment, dropping tags.
// Invalid markup degrades to whatever text remains outside angle brackets.
func StripHTML(html string) string {
	var b strings.Builder
	inTag := false
	for _, c := range html {
		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case !inTag:
			b.WriteRune(c)
		}
	}
	return b.String()
}
