package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner invokes the git binary in a fixed working directory. It is the
// process's client for the repository engine: all mutating operations (clone,
// fetch, checkout, merge, rebase, config writes) go through it, while
// read-side plumbing lives in repo.go on top of go-git.
type Runner struct {
	dir     string
	verbose bool
	// writer controls where verbose invocation logs are written (typically
	// stderr) so structured output on stdout stays clean and tests can
	// capture logs.
	writer io.Writer
}

type Option func(*Runner)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(r *Runner) {
		r.verbose = enabled
		r.writer = writer
	}
}

func NewRunner(dir string, opts ...Option) *Runner {
	r := &Runner{dir: dir}
	for _, apply := range opts {
		if apply != nil {
			apply(r)
		}
	}
	if r.verbose && r.writer == nil {
		r.writer = os.Stderr
	}
	return r
}

// At returns a Runner with the same settings rooted at dir.
func (r *Runner) At(dir string) *Runner {
	clone := *r
	clone.dir = dir
	return &clone
}

func (r *Runner) Dir() string { return r.dir }

// Output runs git with the given arguments and returns trimmed stdout.
// Stderr is captured and folded into the returned error.
func (r *Runner) Output(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	if err := r.run(ctx, &stdout, &stderr, args...); err != nil {
		return "", wrapGitError(args, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Run runs git with the given arguments, discarding stdout. Stderr is
// captured and folded into the returned error.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	var stderr bytes.Buffer
	if err := r.run(ctx, io.Discard, &stderr, args...); err != nil {
		return wrapGitError(args, err, stderr.String())
	}
	return nil
}

// Passthrough runs git with stdout/stderr connected to the given writers.
// Used for operations whose progress output should reach the user directly.
func (r *Runner) Passthrough(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	return r.run(ctx, stdout, stderr, args...)
}

func (r *Runner) run(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if r.verbose && r.writer != nil {
		dur := time.Since(start).Truncate(time.Millisecond)
		if err != nil {
			fmt.Fprintf(r.writer, "[verbose] git %s (in %s): error after %s: %v\n", strings.Join(args, " "), r.dir, dur, err)
		} else {
			fmt.Fprintf(r.writer, "[verbose] git %s (in %s): ok (%s)\n", strings.Join(args, " "), r.dir, dur)
		}
	}
	return err
}

func wrapGitError(args []string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr)
	}
	return fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
}

// ExitCode extracts the subprocess exit status from an error returned by a
// Runner method. It returns -1 when the error did not come from a process
// that ran to completion (not started, or terminated by a signal).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
