package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"submod/internal/git"
	"submod/internal/output"
	"submod/internal/submodule"
)

var absorbCmd = &cobra.Command{
	Use:   "absorbgitdirs [--] [<path>...]",
	Short: "Move embedded submodule git directories into the superproject",
	Long: `Relocate each selected submodule's embedded .git directory into the
superproject's metadata store, leaving a gitfile pointer behind. Afterwards
the working tree can be emptied (see "submod deinit") without losing the
submodule's repository.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console := output.NewConsole(os.Stdout, os.Stderr, cfg.Output.Quiet)
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.AbsorbGitDirs(context.Background(), runner, console, args)
	},
}

func init() {
	rootCmd.AddCommand(absorbCmd)
}
