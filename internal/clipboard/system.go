package clipboard

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"

	"github.com/lanclip/lanclip/internal/proto"
)

// tool is a paste/copy command pair.
type tool struct {
	readCmd   []string
	writeCmd  []string
	available func() bool
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

var tools = []tool{
	{
		readCmd:  []string{"pbpaste"},
		writeCmd: []string{"pbcopy"},
		available: func() bool {
			return runtime.GOOS == "darwin" && commandExists("pbpaste")
		},
	},
	{
		readCmd:  []string{"wl-paste", "--no-newline"},
		writeCmd: []string{"wl-copy"},
		available: func() bool {
			return os.Getenv("WAYLAND_DISPLAY") != "" && commandExists("wl-paste")
		},
	},
	{
		readCmd:  []string{"xclip", "-selection", "clipboard", "-o"},
		writeCmd: []string{"xclip", "-selection", "clipboard", "-i"},
		available: func() bool {
			return commandExists("xclip")
		},
	},
}

// System shells out to the host clipboard tools. Inbound files are saved to
// ReceiveDir instead of being stuffed into the text clipboard.
type System struct {
	tool       tool
	receiveDir string
	log        *zap.Logger
}

// NewSystem picks the first usable clipboard tool for this host.
func NewSystem(receiveDir string, log *zap.Logger) (*System, error) {
	for _, t := range tools {
		if t.available() {
			return &System{tool: t, receiveDir: receiveDir, log: log}, nil
		}
	}
	return nil, ErrNoTool
}

// Read returns the current clipboard contents as plain UTF-8 text.
func (s *System) Read() (proto.ClipboardData, error) {
	cmd := exec.Command(s.tool.readCmd[0], s.tool.readCmd[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return proto.ClipboardData{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return proto.NewString(proto.StringUTF8, out), nil
}

// Write applies inbound clipboard data. HTML falls back to its plain text
// since the command-line tools only speak text; files land in ReceiveDir.
func (s *System) Write(data proto.ClipboardData) error {
	switch data.Kind {
	case proto.ClipString:
		payload := data.Data
		if data.StringType == proto.StringHTML {
			payload = []byte(StripHTML(string(payload)))
		}
		cmd := exec.Command(s.tool.writeCmd[0], s.tool.writeCmd[1:]...)
		cmd.Stdin = bytes.NewReader(payload)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		return nil

	case proto.ClipFile:
		// Keep only the base name; the sender's directory layout is not ours.
		name := filepath.Base(data.Filename)
		if name == "." || name == string(filepath.Separator) {
			return fmt.Errorf("%w: empty filename", ErrWrite)
		}
		dest := filepath.Join(s.receiveDir, name)
		if err := os.MkdirAll(s.receiveDir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		if err := os.WriteFile(dest, data.Data, 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
		s.log.Info("received file saved", zap.String("path", dest))
		return nil

	default:
		return fmt.Errorf("%w: unknown clipboard kind %d", ErrWrite, data.Kind)
	}
}
