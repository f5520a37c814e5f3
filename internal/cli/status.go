package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"submod/internal/flags"
	"submod/internal/git"
	"submod/internal/submodule"
)

var (
	statusCached    bool
	statusRecursive bool
)

var statusCmd = &cobra.Command{
	Use:   "status [--cached] [--recursive] [--] [<path>...]",
	Short: "Show the state of each submodule",
	Long: `Show one line per submodule: a state flag, the checked-out object id and the
submodule path.

State flags:
  -  the submodule is not initialized (or not cloned yet)
  +  the checked-out commit differs from the one the superproject records
  U  the index carries merge conflicts for the submodule
     (a leading space means the submodule is in sync)

With --cached, the recorded object id is shown instead of the checked-out one.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.Status(context.Background(), runner, args, submodule.PathContext{}, statusCached, statusRecursive,
			func(e submodule.StatusEntry) {
				fmt.Fprintf(cmd.OutOrStdout(), "%c%s %s\n", e.State, e.OID, e.DisplayPath)
			})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusCached, flags.FlagCached, false, "Show the recorded object id instead of the checked-out one")
	statusCmd.Flags().BoolVar(&statusRecursive, flags.FlagRecursive, false, "Descend into nested submodules")
}
