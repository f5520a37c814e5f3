package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"submod/internal/git"
	"submod/internal/output"
	"submod/internal/submodule"
)

var initCmd = &cobra.Command{
	Use:   "init [--] [<path>...]",
	Short: "Register submodules from the manifest",
	Long: `Register the selected submodules in the superproject's local configuration.

Registration records the url (and, when present, the update strategy) from the
manifest. It never clones anything: adjust the registered url first if needed,
then run "submod update".

Examples:
  submod init
  submod init vendor/lib
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console := output.NewConsole(os.Stdout, os.Stderr, cfg.Output.Quiet)
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.Initialize(context.Background(), runner, console, args, submodule.PathContext{})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
