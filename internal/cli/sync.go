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

var syncRecursive bool

var syncCmd = &cobra.Command{
	Use:   "sync [--recursive] [--] [<path>...]",
	Short: "Synchronize registered submodule urls from the manifest",
	Long: `Rewrite the registered remote urls of the selected submodules to match the
manifest: the superproject's registration first, then the default remote
inside each populated submodule. Run this after urls change in the manifest.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		console := output.NewConsole(os.Stdout, os.Stderr, cfg.Output.Quiet)
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.SyncURLs(context.Background(), runner, console, args, submodule.PathContext{}, syncRecursive)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncRecursive, flags.FlagRecursive, false, "Descend into nested submodules")
}
