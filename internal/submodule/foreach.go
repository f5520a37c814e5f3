package submodule

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

// Foreach runs a command in each populated submodule, in manifest order,
// exporting the conventional $name, $sm_path, $displaypath, $sha1 and
// $toplevel variables. A single argument is run through the shell; multiple
// arguments are executed directly. The walk stops at the first command that
// exits nonzero.
func Foreach(ctx context.Context, g *git.Runner, console *output.Console, pc PathContext, recursive bool, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("no command given")
	}

	root := workdir(g)
	mods, err := modules.Load(root)
	if err != nil {
		return err
	}
	toplevel, err := g.Output(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return err
	}

	for _, sub := range mods.All() {
		osPath := filepath.Join(root, sub.Path)
		if !git.HasGitDir(osPath) {
			continue
		}
		displayPath := pc.Display(sub.Path)
		console.Info("Entering '%s'", displayPath)

		oid, _, err := recordedGitlink(ctx, g, sub.Path)
		if err != nil {
			return err
		}

		var cmd *exec.Cmd
		if len(command) == 1 {
			cmd = exec.CommandContext(ctx, "sh", "-c", command[0])
		} else {
			cmd = exec.CommandContext(ctx, command[0], command[1:]...)
		}
		cmd.Dir = osPath
		cmd.Env = append(os.Environ(),
			"name="+sub.Name,
			"sm_path="+sub.Path,
			"displaypath="+displayPath,
			"sha1="+oid,
			"toplevel="+toplevel,
		)
		cmd.Stdout = console.OutWriter()
		cmd.Stderr = console.ErrWriter()
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("run_command returned non-zero status for %s", displayPath)
		}

		if recursive {
			child := PathContext{SuperPrefix: displayPath + "/"}
			if err := Foreach(ctx, g.At(osPath), console, child, true, command); err != nil {
				return err
			}
		}
	}
	return nil
}
