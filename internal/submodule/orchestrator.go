package submodule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"submod/internal/git"
	"submod/internal/output"
)

// RepoEngine is the read-side of the repository the orchestrator needs per
// record. Split out so tests can substitute fixtures for real repositories.
type RepoEngine interface {
	// EnsureLinkage verifies (and, where possible, repairs) the connection
	// between a submodule's working copy and its metadata store.
	EnsureLinkage(ctx context.Context, path string) error
	// HeadOID reads the currently checked-out object id at path.
	HeadOID(path string) (string, error)
}

type gitEngine struct {
	g *git.Runner
}

func (e gitEngine) EnsureLinkage(ctx context.Context, path string) error {
	if !git.HasGitDir(path) {
		return fmt.Errorf("submodule path '%s' has no git directory linkage", path)
	}
	if _, err := e.g.At(path).Output(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("broken git directory linkage in submodule path '%s': %w", path, err)
	}
	return nil
}

func (e gitEngine) HeadOID(path string) (string, error) {
	return git.HeadOID(path)
}

// InitProc is the initialization procedure run before the clone phase when
// the invocation asked for it.
type InitProc func(ctx context.Context, paths []string, pc PathContext) error

// Orchestrator drives one update run: it starts the clone phase, consumes
// its record stream strictly sequentially, resolves remote-tracking targets,
// invokes the update executor, classifies outcomes, aggregates non-fatal
// failures across siblings, and recurses into successfully updated
// submodules.
type Orchestrator struct {
	Clone   ClonePhase
	Updater Updater
	Remote  TrackingResolver
	Engine  RepoEngine
	Init    InitProc
	Console *output.Console
	Events  *output.Manager
}

// New wires an Orchestrator with the real collaborators, rooted at the
// process's current directory so recursive descents (which change it) are
// picked up naturally.
func New(g *git.Runner, console *output.Console, events *output.Manager) *Orchestrator {
	return &Orchestrator{
		Clone:   &Cloner{Git: g, Console: console},
		Updater: &GitUpdater{Git: g, Console: console},
		Remote:  &RemoteResolver{Git: g},
		Engine:  gitEngine{g: g},
		Init: func(ctx context.Context, paths []string, pc PathContext) error {
			return Initialize(ctx, g, console, paths, pc)
		},
		Console: console,
		Events:  events,
	}
}

// Run executes the update algorithm and returns the process exit status:
// 0 when every submodule updated (or was already current), 1 when non-fatal
// failures occurred but every sibling was attempted, and 2 or 128 verbatim
// from a fatal abort.
func (o *Orchestrator) Run(ctx context.Context, opts *Options, paths []string, pc PathContext) int {
	_ = o.Events.Publish(output.Event{Type: "update.started"})
	code := o.run(ctx, opts, paths, pc, 0)
	ec := code
	_ = o.Events.Publish(output.Event{Type: "update.finished", ExitCode: &ec})
	return code
}

func (o *Orchestrator) run(ctx context.Context, opts *Options, paths []string, pc PathContext, depth int) int {
	if opts.Init && o.Init != nil {
		if err := o.Init(ctx, paths, pc); err != nil {
			o.Console.Errorf("fatal: %v", err)
			return 1
		}
	}

	stream, err := o.Clone.Start(ctx, opts, paths, pc)
	if err != nil {
		o.Console.Errorf("fatal: %v", err)
		return 1
	}
	defer stream.Close()

	reader := NewStreamReader(stream)
	var agg Aggregator

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var unmatched *UnmatchedError
		if errors.As(err, &unmatched) {
			// Requested paths matched nothing: the embedded status is
			// propagated verbatim and no records are processed.
			return unmatched.Status
		}
		if err != nil {
			o.Console.Errorf("fatal: %v", err)
			return 1
		}

		if err := o.Engine.EnsureLinkage(ctx, rec.Path); err != nil {
			o.Console.Errorf("fatal: %v", err)
			return 1
		}

		rec.DisplayPath = pc.Display(rec.Path)

		if !rec.JustCreated {
			oid, err := o.Engine.HeadOID(rec.Path)
			if err != nil {
				o.Console.Errorf("fatal: could not read HEAD in submodule path '%s': %v", rec.DisplayPath, err)
				return 1
			}
			rec.CurrentOID = oid
		}

		if opts.Remote {
			oid, err := o.Remote.Resolve(ctx, opts, &rec)
			if err != nil {
				o.Console.Errorf("fatal: %v", err)
				return 1
			}
			rec.TargetOID = oid
		}

		out := o.Updater.Update(ctx, opts, &rec)
		switch out.Code {
		case 0:
			if out.Message != "" {
				o.Console.Info("%s", out.Message)
			}
			_ = o.Events.Publish(output.Event{Type: "submodule.updated", Path: rec.DisplayPath, OID: rec.TargetOID, JustCreated: rec.JustCreated, Message: out.Message})
			if opts.Recursive {
				res := o.recurse(ctx, opts, &rec, pc, depth)
				if res == fatalSentinel {
					return fatalSentinel
				}
				if res != 0 {
					agg.Append(fmt.Sprintf("Failed to recurse into submodule path '%s'", rec.DisplayPath))
				}
			}
		case 2, 128:
			o.Console.Errorf("%s", out.Message)
			_ = o.Events.Publish(output.Event{Type: "submodule.failed", Path: rec.DisplayPath, Code: out.Code, Message: out.Message})
			return out.Code
		case 3:
			_ = o.Events.Publish(output.Event{Type: "submodule.skipped", Path: rec.DisplayPath, OID: rec.TargetOID, Code: out.Code})
		default:
			// Non-fatal failure: record and keep going with the next
			// sibling; a failed submodule is never descended into.
			agg.Append("fatal: " + out.Message)
			_ = o.Events.Publish(output.Event{Type: "submodule.failed", Path: rec.DisplayPath, Code: out.Code, Message: out.Message})
		}
	}

	if agg.Len() > 0 {
		for _, entry := range agg.Entries() {
			o.Console.Errorf("%s", entry)
		}
		return 1
	}
	return 0
}

// recurse descends into the submodule behind rec and runs the whole
// procedure one level deeper. The process working directory is switched into
// the submodule for the duration of the nested call and restored on every
// exit path, so sibling processing resumes in the correct context.
func (o *Orchestrator) recurse(ctx context.Context, opts *Options, rec *Record, pc PathContext, depth int) int {
	if depth+1 >= maxDepth {
		o.Console.Errorf("fatal: maximum submodule nesting depth (%d) exceeded at '%s'", maxDepth, rec.DisplayPath)
		return fatalSentinel
	}

	prev, err := os.Getwd()
	if err != nil {
		o.Console.Errorf("could not determine working directory: %v", err)
		return 1
	}
	if err := os.Chdir(rec.Path); err != nil {
		o.Console.Errorf("could not enter submodule path '%s': %v", rec.DisplayPath, err)
		return 1
	}
	defer func() {
		if err := os.Chdir(prev); err != nil {
			// Losing the ambient directory poisons all subsequent sibling
			// work; there is no way to continue from here.
			panic(fmt.Sprintf("could not restore working directory %q: %v", prev, err))
		}
	}()

	return o.run(ctx, opts, nil, pc.Child(rec), depth+1)
}
