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

// AbsorbGitDirs relocates embedded .git directories of the selected
// submodules into the superproject's metadata store and leaves a gitfile
// pointer behind, so the working tree can later be emptied without losing
// repository data.
func AbsorbGitDirs(ctx context.Context, g *git.Runner, console *output.Console, paths []string) error {
	root := workdir(g)
	mods, err := modules.Load(root)
	if err != nil {
		return err
	}
	selected, unmatched := mods.Select(paths)
	if len(unmatched) > 0 {
		return fmt.Errorf("pathspec '%s' did not match any submodule", unmatched[0])
	}

	superGitDir, err := g.Output(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return err
	}

	for _, sub := range selected {
		osPath, err := filepath.Abs(filepath.Join(root, sub.Path))
		if err != nil {
			return err
		}
		embedded := filepath.Join(osPath, ".git")
		info, err := os.Stat(embedded)
		if err != nil || !info.IsDir() {
			// Missing or already a gitfile pointer.
			continue
		}

		dest := filepath.Join(superGitDir, "modules", sub.Name)
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("refusing to move '%s' into existing git dir '%s'", embedded, dest)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.Rename(embedded, dest); err != nil {
			return fmt.Errorf("could not migrate git directory of '%s': %w", sub.Path, err)
		}

		gitfile := "gitdir: " + git.RelPath(osPath, dest) + "\n"
		if err := os.WriteFile(embedded, []byte(gitfile), 0o644); err != nil {
			return err
		}
		if err := g.At(dest).Run(ctx, "config", "core.worktree", git.RelPath(dest, osPath)); err != nil {
			return err
		}
		console.Info("Migrating git directory of '%s' from '%s' to '%s'", sub.Path, embedded, dest)
	}
	return nil
}
