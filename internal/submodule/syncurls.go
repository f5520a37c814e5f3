package submodule

import (
	"context"
	"fmt"
	"path/filepath"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

// SyncURLs rewrites the registered remote URLs from the manifest: first the
// superproject's submodule.<name>.url, then, for populated submodules, the
// default remote inside the submodule itself. Run after editing urls in the
// manifest so existing clones pick the change up.
func SyncURLs(ctx context.Context, g *git.Runner, console *output.Console, paths []string, pc PathContext, recursive bool) error {
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

		// Only registered submodules are synchronized.
		if registered, _ := g.Output(ctx, "config", "--get", "submodule."+sub.Name+".url"); registered == "" {
			continue
		}

		url, err := resolveURL(ctx, g, sub.URL)
		if err != nil {
			return err
		}
		console.Info("Synchronizing submodule url for '%s'", displayPath)
		if err := g.Run(ctx, "config", "submodule."+sub.Name+".url", url); err != nil {
			return fmt.Errorf("failed to update url for submodule path '%s': %w", displayPath, err)
		}

		osPath := filepath.Join(root, sub.Path)
		if !git.HasGitDir(osPath) {
			continue
		}
		sm := g.At(osPath)
		remote := defaultRemote(ctx, sm)
		if err := sm.Run(ctx, "config", "remote."+remote+".url", url); err != nil {
			return fmt.Errorf("failed to update remote for submodule path '%s': %w", displayPath, err)
		}

		if recursive {
			child := PathContext{SuperPrefix: displayPath + "/"}
			if err := SyncURLs(ctx, sm, console, nil, child, true); err != nil {
				return err
			}
		}
	}
	return nil
}
