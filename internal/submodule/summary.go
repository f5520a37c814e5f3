package submodule

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"submod/internal/git"
	"submod/internal/modules"
)

// SummaryEntry describes one submodule whose pinned and checked-out commits
// diverge.
type SummaryEntry struct {
	DisplayPath string
	FromOID     string
	ToOID       string
	// Commits holds one-line subjects for the range, newest first. Nil when
	// the range could not be walked (e.g. commits not fetched yet).
	Commits []string
}

// Summarize reports, per selected submodule, the commits between the
// recorded gitlink and the checked-out HEAD. With cached, the comparison is
// HEAD's gitlink against the index instead of the index against the working
// copy. Submodules that are in sync produce no entry.
func Summarize(ctx context.Context, g *git.Runner, paths []string, limit int, cached bool, visit func(SummaryEntry)) error {
	root := workdir(g)
	mods, err := modules.Load(root)
	if err != nil {
		return err
	}
	selected, unmatched := mods.Select(paths)
	if len(unmatched) > 0 {
		return fmt.Errorf("pathspec '%s' did not match any submodule", unmatched[0])
	}

	for _, sub := range selected {
		recorded, inIndex, err := recordedGitlink(ctx, g, sub.Path)
		if err != nil {
			return err
		}
		if !inIndex {
			continue
		}

		var from, to string
		if cached {
			committed, err := g.Output(ctx, "rev-parse", "--verify", "HEAD:"+sub.Path)
			if err != nil {
				continue // newly added, nothing recorded in HEAD yet
			}
			from, to = committed, recorded
		} else {
			osPath := filepath.Join(root, sub.Path)
			if !git.HasGitDir(osPath) {
				continue
			}
			head, err := git.HeadOID(osPath)
			if err != nil {
				return fmt.Errorf("could not read HEAD in submodule path '%s': %w", sub.Path, err)
			}
			from, to = recorded, head
		}
		if from == to {
			continue
		}

		entry := SummaryEntry{DisplayPath: sub.Path, FromOID: from, ToOID: to}
		sm := g.At(filepath.Join(root, sub.Path))
		args := []string{"log", "--oneline", "--first-parent"}
		if limit > 0 {
			args = append(args, "-n", strconv.Itoa(limit))
		}
		args = append(args, from+".."+to)
		if out, err := sm.Output(ctx, args...); err == nil && out != "" {
			entry.Commits = strings.Split(out, "\n")
		}
		visit(entry)
	}
	return nil
}
