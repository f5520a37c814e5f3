package submodule

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

// ClonePhase materializes worktrees for one sibling batch and produces the
// record stream the orchestrator consumes.
type ClonePhase interface {
	Start(ctx context.Context, opts *Options, paths []string, pc PathContext) (io.ReadCloser, error)
}

// Cloner is the in-process clone phase. Work for distinct submodules runs
// concurrently, bounded by opts.Jobs; record emission is serialized so the
// consumer sees whole lines, in completion order. The consumer starts on the
// first emitted record while later clones are still running.
type Cloner struct {
	Git     *git.Runner
	Console *output.Console
}

func (c *Cloner) Start(ctx context.Context, opts *Options, paths []string, pc PathContext) (io.ReadCloser, error) {
	// Workers run concurrently with the consumer, and the consumer moves the
	// process working directory while descending into a submodule. Anchor the
	// whole batch at an absolute root now so a worker whose turn comes during
	// a descent still resolves config, index and clone targets against this
	// superproject.
	root, err := filepath.Abs(workdir(c.Git))
	if err != nil {
		return nil, err
	}
	g := c.Git.At(root)

	mods, err := modules.Load(root)
	if err != nil {
		return nil, err
	}
	selected, unmatched := mods.Select(paths)

	pr, pw := io.Pipe()

	if len(unmatched) > 0 {
		// Unmatched pathspec terminates the stream before any work starts.
		go func() {
			for _, p := range unmatched {
				c.Console.Errorf("error: pathspec '%s' did not match any submodule", p)
			}
			io.WriteString(pw, formatUnmatched(1))
			pw.Close()
		}()
		return pr, nil
	}

	go c.produce(ctx, g, opts, selected, pc, pw)
	return pr, nil
}

func (c *Cloner) produce(ctx context.Context, root *git.Runner, opts *Options, selected []*modules.Submodule, pc PathContext, pw *io.PipeWriter) {
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for _, sub := range selected {
		g.Go(func() error {
			line, skip, err := c.ensure(ctx, root, opts, sub, pc)
			if err != nil || skip {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			_, werr := io.WriteString(pw, line)
			return werr
		})
	}

	// A nil error closes the pipe normally; a clone failure cancels the
	// remaining workers and surfaces to the consumer after the records it
	// already received.
	pw.CloseWithError(g.Wait())
}

// ensure makes sure one submodule's working copy exists. It returns the
// record line to emit, or skip=true when the submodule takes no part in this
// batch, or an error that fails the whole clone phase. root is the anchored
// batch runner; c.Git must not be used here.
func (c *Cloner) ensure(ctx context.Context, root *git.Runner, opts *Options, sub *modules.Submodule, pc PathContext) (line string, skip bool, err error) {
	displayPath := pc.Display(sub.Path)
	osPath := filepath.Join(root.Dir(), sub.Path)

	if strategyFor(ctx, root, opts, sub) == StrategyNone {
		c.Console.Info("Skipping submodule '%s'", displayPath)
		return "", true, nil
	}

	url, _ := root.Output(ctx, "config", "--get", "submodule."+sub.Name+".url")
	if url == "" {
		if opts.RequireInit {
			return "", false, fmt.Errorf("Submodule path '%s' not initialized", displayPath)
		}
		c.Console.Errorf("Submodule path '%s' not initialized", displayPath)
		c.Console.Errorf("Maybe you want to use 'update --init'?")
		return "", true, nil
	}

	oid, ok, err := recordedGitlink(ctx, root, sub.Path)
	if err != nil {
		return "", false, err
	}
	if !ok {
		c.Console.Errorf("Submodule '%s' is in the manifest but not in the index", displayPath)
		return "", true, nil
	}

	justCreated := false
	if !git.HasGitDir(osPath) {
		if git.IsPopulated(osPath) {
			return "", false, fmt.Errorf("directory '%s' exists, but is not a submodule working tree", displayPath)
		}
		if err := c.clone(ctx, root, opts, sub, url); err != nil {
			return "", false, fmt.Errorf("failed to clone '%s': %w", displayPath, err)
		}
		justCreated = true
	}

	return formatRecord(oid, justCreated, sub.Path), false, nil
}

// recordedGitlink reads the commit the superproject's index pins for path.
func recordedGitlink(ctx context.Context, g *git.Runner, path string) (string, bool, error) {
	out, err := g.Output(ctx, "ls-files", "--stage", "--", path)
	if err != nil {
		return "", false, fmt.Errorf("read index entry for '%s': %w", path, err)
	}
	// "160000 <oid> <stage>\t<path>"; mode 160000 marks a gitlink.
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "160000" {
		return "", false, nil
	}
	return fields[1], true, nil
}

func (c *Cloner) clone(ctx context.Context, root *git.Runner, opts *Options, sub *modules.Submodule, url string) error {
	args := []string{"clone", "--no-checkout"}
	if opts.Quiet {
		args = append(args, "--quiet")
	}
	if depth := cloneDepth(opts, sub); depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	if opts.Reference != "" {
		args = append(args, "--reference", opts.Reference)
		if opts.Dissociate {
			args = append(args, "--dissociate")
		}
	}
	switch opts.SingleBranch {
	case TriTrue:
		args = append(args, "--single-branch")
	case TriFalse:
		args = append(args, "--no-single-branch")
	}
	args = append(args, "--", url, sub.Path)
	return root.Run(ctx, args...)
}

// cloneDepth resolves the effective clone depth: an explicit --depth wins,
// then the manifest's shallow recommendation unless the invocation opted
// out of recommendations.
func cloneDepth(opts *Options, sub *modules.Submodule) int {
	if opts.Depth > 0 {
		return opts.Depth
	}
	if sub.Shallow && opts.RecommendShallow != TriFalse {
		return 1
	}
	return 0
}

// strategyFor resolves the update strategy for one submodule: the
// invocation's explicit strategy, else local config, else the manifest,
// else checkout.
func strategyFor(ctx context.Context, g *git.Runner, opts *Options, sub *modules.Submodule) Strategy {
	if opts.Strategy != StrategyUnspecified {
		return opts.Strategy
	}
	if v, err := g.Output(ctx, "config", "--get", "submodule."+sub.Name+".update"); err == nil && v != "" {
		if s, err := ParseStrategy(v); err == nil && s != StrategyUnspecified {
			return s
		}
	}
	if s, err := ParseStrategy(sub.Update); err == nil && s != StrategyUnspecified {
		return s
	}
	return StrategyCheckout
}

// workdir maps a Runner rooted at the process location to the current
// directory for filesystem reads.
func workdir(g *git.Runner) string {
	if g == nil || g.Dir() == "" {
		return "."
	}
	return g.Dir()
}
