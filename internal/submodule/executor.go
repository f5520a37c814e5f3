package submodule

import (
	"context"
	"fmt"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

// Updater performs the per-submodule update procedure. The orchestrator
// treats it as opaque and interprets only the Outcome taxonomy.
type Updater interface {
	Update(ctx context.Context, opts *Options, rec *Record) Outcome
}

// GitUpdater moves a submodule's working copy to the target commit with the
// resolved strategy, fetching the commit first when it is not present
// locally.
type GitUpdater struct {
	Git     *git.Runner
	Console *output.Console
}

func (u *GitUpdater) Update(ctx context.Context, opts *Options, rec *Record) Outcome {
	if !opts.Force && !rec.JustCreated && rec.CurrentOID == rec.TargetOID {
		return Outcome{Code: 3}
	}

	sub := u.lookup(rec.Path)
	if sub == nil {
		return Outcome{Code: 2, Message: fmt.Sprintf("submodule '%s' disappeared from the manifest", rec.DisplayPath)}
	}

	if err := u.ensureCommit(ctx, opts, rec); err != nil {
		return Outcome{Code: 1, Message: err.Error()}
	}

	sm := u.Git.At(rec.Path)
	strategy := strategyFor(ctx, u.Git, opts, sub)
	switch strategy {
	case StrategyNone:
		return Outcome{Code: 3}
	case StrategyCheckout:
		args := []string{"checkout", "-q"}
		if opts.Force {
			args = append(args, "-f")
		}
		args = append(args, rec.TargetOID)
		if err := sm.Run(ctx, args...); err != nil {
			return classify(err, fmt.Sprintf("Unable to checkout '%s' in submodule path '%s'", rec.TargetOID, rec.DisplayPath))
		}
		return Outcome{Code: 0, Message: fmt.Sprintf("Submodule path '%s': checked out '%s'", rec.DisplayPath, rec.TargetOID)}
	case StrategyMerge:
		if err := sm.Run(ctx, "merge", "-q", rec.TargetOID); err != nil {
			return classify(err, fmt.Sprintf("Unable to merge '%s' in submodule path '%s'", rec.TargetOID, rec.DisplayPath))
		}
		return Outcome{Code: 0, Message: fmt.Sprintf("Submodule path '%s': merged in '%s'", rec.DisplayPath, rec.TargetOID)}
	case StrategyRebase:
		if err := sm.Run(ctx, "rebase", "-q", rec.TargetOID); err != nil {
			return classify(err, fmt.Sprintf("Unable to rebase '%s' in submodule path '%s'", rec.TargetOID, rec.DisplayPath))
		}
		return Outcome{Code: 0, Message: fmt.Sprintf("Submodule path '%s': rebased into '%s'", rec.DisplayPath, rec.TargetOID)}
	default:
		return Outcome{Code: 2, Message: fmt.Sprintf("invalid update strategy for submodule path '%s'", rec.DisplayPath)}
	}
}

// ensureCommit makes the target commit reachable locally, fetching once if
// necessary.
func (u *GitUpdater) ensureCommit(ctx context.Context, opts *Options, rec *Record) error {
	sm := u.Git.At(rec.Path)
	if sm.Run(ctx, "cat-file", "-e", rec.TargetOID+"^{commit}") == nil {
		return nil
	}
	if opts.NoFetch {
		return fmt.Errorf("commit %s not found in submodule path '%s', and fetching is disabled", rec.TargetOID, rec.DisplayPath)
	}
	remote := defaultRemote(ctx, sm)
	if err := sm.Run(ctx, "fetch", remote); err != nil {
		return fmt.Errorf("Unable to fetch in submodule path '%s'", rec.DisplayPath)
	}
	if sm.Run(ctx, "cat-file", "-e", rec.TargetOID+"^{commit}") != nil {
		return fmt.Errorf("Fetched in submodule path '%s', but it did not contain %s", rec.DisplayPath, rec.TargetOID)
	}
	return nil
}

func (u *GitUpdater) lookup(path string) *modules.Submodule {
	mods, err := modules.Load(workdir(u.Git))
	if err != nil {
		return nil
	}
	sub, ok := mods.ByPath(path)
	if !ok {
		return nil
	}
	return sub
}

// classify maps a git subprocess failure to the outcome taxonomy: a process
// that ran and failed is a non-fatal update failure, while a process that
// died (signal, not started) or reported git's own fatal status aborts the
// batch.
func classify(err error, softMessage string) Outcome {
	switch code := git.ExitCode(err); code {
	case -1:
		return Outcome{Code: 2, Message: err.Error()}
	case 128:
		return Outcome{Code: 128, Message: err.Error()}
	default:
		return Outcome{Code: 1, Message: softMessage}
	}
}
