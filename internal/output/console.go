package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Console is the human-facing text surface. Informational messages go to
// stdout and are suppressed in quiet mode; diagnostics go to stderr and are
// never suppressed. Message wording severity is decoupled from control-flow
// severity: a leading "fatal:" marker is colored but otherwise left exactly
// as produced, since wrapper tooling scrapes it.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	quiet bool
}

var fatalMarker = color.New(color.FgRed, color.Bold)

func NewConsole(out, err io.Writer, quiet bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	if err == nil {
		err = os.Stderr
	}
	return &Console{out: out, err: err, quiet: quiet}
}

// Info writes an informational line to stdout unless quiet mode is on.
func (c *Console) Info(format string, args ...any) {
	if c == nil || c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Errorf writes a diagnostic line to stderr. Quiet mode does not apply.
func (c *Console) Errorf(format string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if rest, ok := strings.CutPrefix(msg, "fatal: "); ok {
		fatalMarker.Fprint(c.err, "fatal: ")
		fmt.Fprintln(c.err, rest)
		return
	}
	fmt.Fprintln(c.err, msg)
}

// ErrWriter exposes the diagnostic stream for collaborators that hand their
// output straight through (e.g. clone progress).
func (c *Console) ErrWriter() io.Writer {
	if c == nil {
		return os.Stderr
	}
	return c.err
}

// OutWriter exposes the informational stream for collaborators that hand
// their output straight through (e.g. commands run per submodule).
func (c *Console) OutWriter() io.Writer {
	if c == nil {
		return os.Stdout
	}
	return c.out
}
