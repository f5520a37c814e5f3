package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"submod/internal/config"
	"submod/internal/flags"
	"submod/internal/git"
	"submod/internal/output"
	"submod/internal/submodule"
)

var cfg = config.New()

// The paired tri-state flags stay out of Config until we know whether the
// user actually passed them, so the manifest's recommendation can apply when
// they did not.
var (
	updateSingleBranch       bool
	updateNoSingleBranch     bool
	updateRecommendShallow   bool
	updateNoRecommendShallow bool
)

var updateCmd = &cobra.Command{
	Use:   "update [flags] [--] [<path>...]",
	Short: "Bring submodules in sync with their recorded commits",
	Long: `Bring each submodule's working copy in sync with the commit the
superproject records for it, cloning missing working copies first.

Cloning for distinct submodules may run in parallel (see --jobs); updates are
applied strictly sequentially in the order clones complete. A submodule whose
update fails non-fatally does not stop its siblings: the failure is recorded
and reported after the whole batch, once.

With --remote, each submodule moves to the tip of its remote-tracking branch
instead of the recorded commit. With --recursive, the procedure repeats inside
every successfully updated submodule.

Output:
	Console output goes to stdout, diagnostics to stderr. Structured lifecycle
	events can be written to stdout via:
	- --emit ndjson: one JSON object per line (update.started,
	  submodule.updated, submodule.failed, submodule.skipped, update.finished)
	- --emit json: one aggregate JSON array on exit

Exit codes:
	0   = every submodule updated, or was already current
	1   = one or more non-fatal failures; every sibling was still attempted
	2   = an update operation died; the batch was aborted early
	128 = git reported a fatal error; the batch was aborted early

Examples:
  # First checkout of a freshly cloned superproject
  submod update --init --recursive

  # Track upstream branches instead of recorded commits
  submod update --remote

  # AI agent: stream machine-readable events to stdout
  submod update --quiet --emit ndjson
`,
	Run: func(cmd *cobra.Command, args []string) {
		applyTristates(cmd, cfg)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		console := output.NewConsole(os.Stdout, os.Stderr, cfg.Output.Quiet)
		events := output.NewManager()
		for _, emit := range cfg.Output.Emit {
			sink, err := output.NewEmitSink(os.Stdout, emit)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := events.AddSink(sink); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		runner := git.NewRunner("", git.WithVerbose(cfg.Runtime.Verbose, nil))
		orch := submodule.New(runner, console, events)

		code := orch.Run(context.Background(), cfg.Options(), args, submodule.PathContext{})
		if err := events.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if code == 0 {
				code = 1
			}
		}
		os.Exit(code)
	},
}

// applyTristates folds the paired bool flags into the config's tri-state
// fields, keeping "not specified" distinguishable from an explicit choice.
func applyTristates(cmd *cobra.Command, cfg *config.Config) {
	if cmd == nil {
		return
	}
	if cmd.Flags().Changed(flags.FlagSingleBranch) && updateSingleBranch {
		cfg.Update.SingleBranch = "true"
	}
	if cmd.Flags().Changed(flags.FlagNoSingleBranch) && updateNoSingleBranch {
		cfg.Update.SingleBranch = "false"
	}
	if cmd.Flags().Changed(flags.FlagRecommendShallow) && updateRecommendShallow {
		cfg.Update.RecommendShallow = "true"
	}
	if cmd.Flags().Changed(flags.FlagNoRecommendShallow) && updateNoRecommendShallow {
		cfg.Update.RecommendShallow = "false"
	}
}

func init() {
	rootCmd.AddCommand(updateCmd)

	// Behavior
	updateCmd.Flags().BoolVar(&cfg.Update.Init, flags.FlagInit, false, "Register submodules from the manifest before updating")
	updateCmd.Flags().BoolVar(&cfg.Update.Remote, flags.FlagRemote, false, "Update to the tip of each submodule's tracking branch")
	updateCmd.Flags().BoolVar(&cfg.Update.NoFetch, flags.FlagNoFetch, false, "Do not fetch when resolving the tracking branch")
	updateCmd.Flags().BoolVarP(&cfg.Update.Force, flags.FlagForce, "f", false, "Discard local changes on checkout; update even when already at the target commit")
	updateCmd.Flags().BoolVar(&cfg.Update.Recursive, flags.FlagRecursive, false, "Descend into nested submodules after a successful update")

	// Strategy
	updateCmd.Flags().BoolVar(&cfg.Update.Checkout, flags.FlagCheckout, false, "Detach-checkout the target commit (default strategy)")
	updateCmd.Flags().BoolVar(&cfg.Update.Merge, flags.FlagMerge, false, "Merge the target commit into the current branch")
	updateCmd.Flags().BoolVar(&cfg.Update.Rebase, flags.FlagRebase, false, "Rebase the current branch onto the target commit")

	// Cloning
	updateCmd.Flags().StringVar(&cfg.Update.Reference, flags.FlagReference, "", "Borrow objects from this local repository when cloning")
	updateCmd.Flags().BoolVar(&cfg.Update.Dissociate, flags.FlagDissociate, false, "Stop borrowing from --reference after the clone")
	updateCmd.Flags().IntVar(&cfg.Update.Depth, flags.FlagDepth, 0, "Limit clone/fetch history to this many commits (0 = full history)")
	updateCmd.Flags().IntVarP(&cfg.Update.Jobs, flags.FlagJobs, "j", 1, "Number of submodules cloned in parallel")
	updateCmd.Flags().BoolVar(&updateSingleBranch, flags.FlagSingleBranch, false, "Clone only the tracking branch")
	updateCmd.Flags().BoolVar(&updateNoSingleBranch, flags.FlagNoSingleBranch, false, "Clone all branches")
	updateCmd.Flags().BoolVar(&updateRecommendShallow, flags.FlagRecommendShallow, false, "Honor the manifest's shallow-clone recommendation (default)")
	updateCmd.Flags().BoolVar(&updateNoRecommendShallow, flags.FlagNoRecommendShallow, false, "Ignore the manifest's shallow-clone recommendation")

	// Output
	updateCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit a structured event stream to stdout: json|ndjson (repeatable)")
}
