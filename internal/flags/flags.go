package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// the submodule engine. Keeping these as constants helps avoid drift between
// Cobra flag wiring and other code paths that need to reference flags (e.g.
// hint messages that tell the user which flag to pass).
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Update behavior
	FlagInit               = "init"
	FlagRemote             = "remote"
	FlagNoFetch            = "no-fetch"
	FlagForce              = "force"
	FlagCheckout           = "checkout"
	FlagMerge              = "merge"
	FlagRebase             = "rebase"
	FlagRecursive          = "recursive"
	FlagReference          = "reference"
	FlagDissociate         = "dissociate"
	FlagDepth              = "depth"
	FlagJobs               = "jobs"
	FlagSingleBranch       = "single-branch"
	FlagNoSingleBranch     = "no-single-branch"
	FlagRecommendShallow   = "recommend-shallow"
	FlagNoRecommendShallow = "no-recommend-shallow"

	// Inspection
	FlagCached = "cached"
	FlagLimit  = "limit"
	FlagAll    = "all"

	// Output
	FlagQuiet = "quiet"
	FlagEmit  = "emit"
)
