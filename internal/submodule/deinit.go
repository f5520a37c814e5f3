package submodule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

// Deinit unregisters the selected submodules and empties their working
// trees. Without force, a working tree with local modifications is refused.
// A submodule whose .git is still a real directory (not yet absorbed) is
// never emptied, because that would discard its repository.
func Deinit(ctx context.Context, g *git.Runner, console *output.Console, paths []string, all, force bool) error {
	if all == (len(paths) > 0) {
		return fmt.Errorf("use either --all or an explicit path list")
	}

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
		url, _ := g.Output(ctx, "config", "--get", "submodule."+sub.Name+".url")
		if url == "" {
			continue
		}

		osPath := filepath.Join(root, sub.Path)
		if git.IsPopulated(osPath) {
			if info, err := os.Stat(filepath.Join(osPath, ".git")); err == nil && info.IsDir() {
				return fmt.Errorf("submodule work tree '%s' contains a .git directory; use 'absorbgitdirs' first", sub.Path)
			}
			if !force {
				dirty, err := g.At(osPath).Output(ctx, "status", "--porcelain")
				if err != nil {
					return fmt.Errorf("could not inspect submodule work tree '%s': %w", sub.Path, err)
				}
				if dirty != "" {
					return fmt.Errorf("Submodule work tree '%s' contains local modifications; use '-f' to discard them", sub.Path)
				}
			}
			if err := os.RemoveAll(osPath); err != nil {
				return fmt.Errorf("could not clear directory '%s': %w", sub.Path, err)
			}
			console.Info("Cleared directory '%s'", sub.Path)
		}
		if err := os.MkdirAll(osPath, 0o755); err != nil {
			return err
		}

		if err := g.Run(ctx, "config", "--remove-section", "submodule."+sub.Name); err != nil {
			return fmt.Errorf("failed to unregister submodule '%s': %w", sub.Name, err)
		}
		console.Info("Submodule '%s' (%s) unregistered for path '%s'", sub.Name, url, sub.Path)
	}
	return nil
}
