package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"submod/internal/flags"
	"submod/internal/git"
	"submod/internal/output"
	"submod/internal/submodule"
)

var (
	deinitAll   bool
	deinitForce bool
)

var deinitCmd = &cobra.Command{
	Use:   "deinit [--force] (--all | [--] <path>...)",
	Short: "Unregister submodules and empty their working trees",
	Long: `Unregister the selected submodules and empty their working trees.

The manifest entry stays; only the local registration and the working copy are
removed, so "submod init" and "submod update" restore the submodule later.
Working trees with local modifications are refused unless --force is given,
and a working tree still holding an embedded .git directory is never emptied
(run "submod absorbgitdirs" first).
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console := output.NewConsole(os.Stdout, os.Stderr, cfg.Output.Quiet)
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.Deinit(context.Background(), runner, console, args, deinitAll, deinitForce)
	},
}

func init() {
	rootCmd.AddCommand(deinitCmd)
	deinitCmd.Flags().BoolVar(&deinitAll, flags.FlagAll, false, "Deinit every registered submodule")
	deinitCmd.Flags().BoolVarP(&deinitForce, flags.FlagForce, "f", false, "Discard local modifications in the working tree")
}
