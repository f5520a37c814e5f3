package submodule

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"submod/internal/git"
	"submod/internal/modules"
)

// TrackingResolver computes the object a submodule should move to when
// remote-tracking mode is requested. Every failure here is fatal; unlike the
// general update path there is no soft-failure variant.
type TrackingResolver interface {
	Resolve(ctx context.Context, opts *Options, rec *Record) (string, error)
}

// RemoteResolver resolves the tracking branch against the submodule's
// default remote, fetching it first unless the invocation said not to.
type RemoteResolver struct {
	Git *git.Runner
}

func (r *RemoteResolver) Resolve(ctx context.Context, opts *Options, rec *Record) (string, error) {
	branch, err := r.trackingBranch(ctx, rec)
	if err != nil {
		return "", err
	}

	sm := r.Git.At(rec.Path)
	remote := defaultRemote(ctx, sm)

	if !opts.NoFetch {
		args := []string{"fetch"}
		if opts.Quiet {
			args = append(args, "--quiet")
		}
		if opts.Depth > 0 {
			args = append(args, "--depth", strconv.Itoa(opts.Depth))
		}
		args = append(args, remote)
		if err := sm.Run(ctx, args...); err != nil {
			return "", fmt.Errorf("Unable to fetch in submodule path '%s'", rec.DisplayPath)
		}
	}

	oid, err := sm.Output(ctx, "rev-parse", "--verify", remote+"/"+branch+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("Unable to find %s/%s revision in submodule path '%s'", remote, branch, rec.DisplayPath)
	}
	return oid, nil
}

// trackingBranch chooses the branch to track: an explicit local-config
// override, else the manifest's per-submodule branch, else the
// superproject's current branch. "." always means the superproject's
// branch, and a detached superproject HEAD cannot be tracked.
func (r *RemoteResolver) trackingBranch(ctx context.Context, rec *Record) (string, error) {
	mods, err := modules.Load(workdir(r.Git))
	if err != nil {
		return "", err
	}

	var branch string
	if sub, ok := mods.ByPath(rec.Path); ok {
		if v, err := r.Git.Output(ctx, "config", "--get", "submodule."+sub.Name+".branch"); err == nil && v != "" {
			branch = v
		} else {
			branch = sub.Branch
		}
	}
	if branch != "" && branch != "." {
		return branch, nil
	}

	head, err := git.CurrentBranch(workdir(r.Git))
	if err != nil {
		return "", err
	}
	if head == "" {
		return "", fmt.Errorf("Submodule (%s) branch configured to inherit branch from superproject, but the superproject is not on any branch", rec.DisplayPath)
	}
	return head, nil
}

// defaultRemote returns the submodule's sole configured remote, or "origin"
// when there are several (or none yet).
func defaultRemote(ctx context.Context, sm *git.Runner) string {
	out, err := sm.Output(ctx, "remote")
	if err != nil {
		return "origin"
	}
	remotes := strings.Fields(out)
	if len(remotes) == 1 {
		return remotes[0]
	}
	return "origin"
}
