package submodule

import "fmt"

// Strategy selects the mechanism used to move a submodule's working copy to
// its target commit.
type Strategy int

const (
	StrategyUnspecified Strategy = iota
	StrategyCheckout
	StrategyMerge
	StrategyRebase
	// StrategyNone marks a submodule whose manifest opts out of updates.
	// It is never set on Options; it only comes from per-submodule config.
	StrategyNone
)

func (s Strategy) String() string {
	switch s {
	case StrategyCheckout:
		return "checkout"
	case StrategyMerge:
		return "merge"
	case StrategyRebase:
		return "rebase"
	case StrategyNone:
		return "none"
	default:
		return "unspecified"
	}
}

// ParseStrategy maps a per-submodule "update" configuration value to a
// Strategy. An empty value is StrategyUnspecified.
func ParseStrategy(v string) (Strategy, error) {
	switch v {
	case "":
		return StrategyUnspecified, nil
	case "checkout":
		return StrategyCheckout, nil
	case "merge":
		return StrategyMerge, nil
	case "rebase":
		return StrategyRebase, nil
	case "none":
		return StrategyNone, nil
	default:
		return StrategyUnspecified, fmt.Errorf("invalid update strategy %q", v)
	}
}

// Tristate is an option that distinguishes "not specified" from an explicit
// yes or no, so manifest recommendations can fill the gap.
type Tristate int

const (
	TriUnset Tristate = iota
	TriTrue
	TriFalse
)

// Options is the immutable per-invocation configuration of one update run.
// Recursive descents share the same value; only the PathContext changes.
type Options struct {
	// Init runs the initialization procedure before cloning.
	Init bool
	// RequireInit makes an uninitialized selected submodule a hard failure
	// instead of a skip-with-warning.
	RequireInit bool
	// Remote moves each submodule to its remote-tracking branch tip instead
	// of the superproject's recorded commit.
	Remote bool
	// NoFetch suppresses the fetch that Remote would otherwise perform.
	NoFetch bool
	// Force discards local modifications when checking out, and updates even
	// when the submodule is already at the target commit.
	Force bool

	Strategy  Strategy
	Recursive bool

	// Reference is a local repository used as an alternate object store for
	// fresh clones; Dissociate breaks that borrowing after the clone.
	Reference  string
	Dissociate bool

	// Depth limits clone/fetch history. Zero means full history.
	Depth int
	// Jobs bounds clone-phase parallelism. Must be >= 1.
	Jobs int

	SingleBranch Tristate
	// RecommendShallow controls whether the manifest's shallow
	// recommendation is honored for fresh clones.
	RecommendShallow Tristate

	Quiet bool
}
