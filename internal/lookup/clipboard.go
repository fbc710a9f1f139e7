package lookup

import (
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard receives copied card codes.
type Clipboard interface {
	Copy(text string) error
}

// OSC52 copies through the terminal using the OSC 52 escape sequence, so it
// also works over SSH. Inside tmux or screen the sequence is wrapped in the
// multiplexer's passthrough.
type OSC52 struct {
	w    io.Writer
	term string
	tmux bool
}

// NewOSC52 returns a clipboard writing to w, configured from the environment.
func NewOSC52(w io.Writer) *OSC52 {
	if w == nil {
		w = os.Stderr
	}
	return &OSC52{
		w:    w,
		term: os.Getenv("TERM"),
		tmux: os.Getenv("TMUX") != "",
	}
}

// Copy writes text to the system clipboard.
func (c *OSC52) Copy(text string) error {
	seq := osc52.New(text)
	switch {
	case c.tmux:
		seq = seq.Tmux()
	case strings.HasPrefix(c.term, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(c.w)
	return err
}
