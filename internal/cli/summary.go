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
	summaryCached bool
	summaryLimit  int
)

var summaryCmd = &cobra.Command{
	Use:   "summary [--cached] [--limit <n>] [--] [<path>...]",
	Short: "Summarize commits between recorded and checked-out submodule state",
	Long: `Show, per submodule, the commits between the commit the superproject records
and the commit actually checked out. Submodules that are in sync produce no
output.

With --cached, the comparison is between the last committed and the currently
recorded (staged) state instead.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		return submodule.Summarize(context.Background(), runner, args, summaryLimit, summaryCached,
			func(e submodule.SummaryEntry) {
				fmt.Fprintf(cmd.OutOrStdout(), "* %s %s...%s (%d):\n", e.DisplayPath, abbrev(e.FromOID), abbrev(e.ToOID), len(e.Commits))
				for _, line := range e.Commits {
					fmt.Fprintf(cmd.OutOrStdout(), "  > %s\n", line)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			})
	},
}

func abbrev(oid string) string {
	if len(oid) > 7 {
		return oid[:7]
	}
	return oid
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryCached, flags.FlagCached, false, "Compare committed state against the recorded (staged) state")
	summaryCmd.Flags().IntVar(&summaryLimit, flags.FlagLimit, 0, "Limit the number of commits shown per submodule (0 = no limit)")
}
