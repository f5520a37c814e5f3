package submodule

import (
	"context"
	"fmt"
	"path/filepath"

	"submod/internal/git"
	"submod/internal/modules"
)

// StatusEntry is one line of submodule state.
type StatusEntry struct {
	// State is '-' for an uninitialized submodule, '+' when the checked-out
	// commit differs from the recorded one, 'U' when the index carries merge
	// conflicts for the submodule, and ' ' when everything is in sync.
	State       byte
	OID         string
	DisplayPath string
}

// Status walks the selected submodules and reports their state through
// visit, in manifest order, descending into populated submodules when
// recursive is set. It never mutates anything.
func Status(ctx context.Context, g *git.Runner, paths []string, pc PathContext, cached, recursive bool, visit func(StatusEntry)) error {
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
		displayPath := pc.Display(sub.Path)
		osPath := filepath.Join(root, sub.Path)

		recorded, inIndex, err := recordedGitlink(ctx, g, sub.Path)
		if err != nil {
			return err
		}
		if !inIndex {
			continue
		}

		url, _ := g.Output(ctx, "config", "--get", "submodule."+sub.Name+".url")
		if url == "" || !git.HasGitDir(osPath) {
			visit(StatusEntry{State: '-', OID: recorded, DisplayPath: displayPath})
			continue
		}

		if conflicted, _ := g.Output(ctx, "ls-files", "-u", "--", sub.Path); conflicted != "" {
			visit(StatusEntry{State: 'U', OID: recorded, DisplayPath: displayPath})
			continue
		}

		head, err := git.HeadOID(osPath)
		if err != nil {
			return fmt.Errorf("could not read HEAD in submodule path '%s': %w", displayPath, err)
		}
		entry := StatusEntry{State: ' ', OID: head, DisplayPath: displayPath}
		if head != recorded {
			entry.State = '+'
		}
		if cached {
			entry.OID = recorded
		}
		visit(entry)

		if recursive {
			child := PathContext{SuperPrefix: displayPath + "/"}
			if err := Status(ctx, g.At(osPath), nil, child, cached, true, visit); err != nil {
				return err
			}
		}
	}
	return nil
}
