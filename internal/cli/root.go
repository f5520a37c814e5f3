package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"submod/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "submod",
	Short: "Manage nested repositories pinned to fixed commits",
	Long: `Submod manages a tree of nested repositories ("submodules") pinned to fixed
commits inside a parent repository, and brings them into sync with those
commits.

Submod drives the git binary for all mutating operations; it never talks to a
hosting provider's API.

Examples:
	# Show available commands and global flags
	submod --help

	# Clone missing submodules and move every submodule to its recorded commit
	submod update --init --recursive

	# Inspect submodule state
	submod status --recursive

	# Print build info
	submod version

Output:
	By default, commands write human-readable output to stdout and diagnostics
	to stderr. The update command supports structured output via --emit (see
	"submod update --help").`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&cfg.Output.Quiet, flags.FlagQuiet, "q", false, "Suppress informational output (diagnostics are still written)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every git invocation and its duration)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
