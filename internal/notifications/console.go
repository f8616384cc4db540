package notifications

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// ConsoleSink prints one line per notification, coloured when the writer is a terminal.
type ConsoleSink struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

// NewConsoleSink writes to out, or stderr when out is nil. Colour is used only on a terminal.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleSink{out: out, colorize: isTerminal(out)}
}

func (c *ConsoleSink) Deliver(_ context.Context, n Notification) error {
	line := fmt.Sprintf("[%s] %s", label(n.Kind), n.Text)
	if c.colorize {
		line = kindColors(n.Kind).Sprint(line)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

func label(kind Kind) string {
	switch kind {
	case Success:
		return "OK"
	case Error:
		return "ERROR"
	case Warning:
		return "WARN"
	default:
		return "INFO"
	}
}

func kindColors(kind Kind) text.Colors {
	switch kind {
	case Success:
		return text.Colors{text.FgGreen}
	case Error:
		return text.Colors{text.FgRed, text.Bold}
	case Warning:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgBlue}
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
