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

var foreachRecursive bool

var foreachCmd = &cobra.Command{
	Use:   "foreach [--recursive] [--] <command>...",
	Short: "Run a command in each submodule",
	Long: `Run a command in the root of each populated submodule, in manifest order.

A single argument is run through the shell; multiple arguments are executed
directly. The conventional variables $name, $sm_path, $displaypath, $sha1 and
$toplevel are exported into the command's environment. The walk stops at the
first command that exits nonzero.

Examples:
  submod foreach 'git switch main'
  submod foreach --recursive -- git fetch --all
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		console := output.NewConsole(os.Stdout, os.Stderr, cfg.Output.Quiet)
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.Foreach(context.Background(), runner, console, submodule.PathContext{}, foreachRecursive, args)
	},
}

func init() {
	rootCmd.AddCommand(foreachCmd)
	foreachCmd.Flags().BoolVar(&foreachRecursive, flags.FlagRecursive, false, "Descend into nested submodules")
}
