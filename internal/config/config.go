package config

import (
	"errors"
	"fmt"
	"strings"

	"submod/internal/submodule"
)

type Config struct {
	Update  Update
	Output  Output
	Runtime Runtime
}

type Update struct {
	// Init registers submodules from the manifest before updating (see --init).
	Init bool

	// Remote updates to the tip of each submodule's tracking branch instead
	// of the superproject's recorded commit (see --remote).
	Remote bool

	// NoFetch suppresses fetching when resolving the tracking branch
	// (see --no-fetch).
	NoFetch bool

	// Force discards local modifications on checkout and updates even when
	// the submodule is already at the target commit (see --force).
	Force bool

	// Checkout, Merge and Rebase select the update strategy; at most one may
	// be set (see --checkout/--merge/--rebase). When none is set, each
	// submodule's configured strategy applies, defaulting to checkout.
	Checkout bool
	Merge    bool
	Rebase   bool

	// Recursive descends into nested submodules after a successful update
	// (see --recursive).
	Recursive bool

	// Reference is a local repository borrowed as an alternate object store
	// for fresh clones (see --reference); Dissociate breaks the borrowing
	// afterwards (see --dissociate).
	Reference  string
	Dissociate bool

	// Depth limits clone/fetch history; 0 means full history (see --depth).
	Depth int

	// Jobs bounds clone-phase parallelism (see --jobs). Must be >= 1.
	Jobs int

	// SingleBranch and RecommendShallow are tri-states: "", "true" or
	// "false". The CLI fills them in only when the corresponding flag pair
	// was given, so the manifest's recommendation can apply otherwise.
	SingleBranch     string
	RecommendShallow string
}

type Output struct {
	// Quiet suppresses informational output (see --quiet). Diagnostics are
	// always written.
	Quiet bool

	// Emit writes an additional structured event stream to stdout
	// (see --emit). Allowed values: json, ndjson.
	Emit []string
}

type Runtime struct {
	// Verbose logs every git invocation with its duration.
	Verbose bool
}

func New() *Config {
	return &Config{
		Update: Update{Jobs: 1},
	}
}

func (c *Config) Validate() error {
	strategies := 0
	for _, set := range []bool{c.Update.Checkout, c.Update.Merge, c.Update.Rebase} {
		if set {
			strategies++
		}
	}
	if strategies > 1 {
		return errors.New("--checkout, --merge and --rebase are mutually exclusive")
	}

	if c.Update.Depth < 0 {
		return errors.New("--depth must be >= 0")
	}
	if c.Update.Jobs <= 0 {
		return errors.New("--jobs must be >= 1")
	}
	if c.Update.Dissociate && c.Update.Reference == "" {
		return errors.New("--dissociate requires --reference")
	}

	for i, emit := range c.Output.Emit {
		v := strings.ToLower(strings.TrimSpace(emit))
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
		c.Output.Emit[i] = v
	}

	if err := validateTristate("--single-branch", c.Update.SingleBranch); err != nil {
		return err
	}
	return validateTristate("--recommend-shallow", c.Update.RecommendShallow)
}

func validateTristate(flag, v string) error {
	switch v {
	case "", "true", "false":
		return nil
	default:
		return fmt.Errorf("invalid %s value: %s", flag, v)
	}
}

// Options converts the validated configuration into the immutable options
// value the orchestrator carries through every recursive call.
func (c *Config) Options() *submodule.Options {
	opts := &submodule.Options{
		Init: c.Update.Init,
		// With --init, nested submodules selected on a recursive descent
		// are initialized at that level too, so an uninitialized one there
		// is a hard failure rather than a skip.
		RequireInit:      c.Update.Init,
		Remote:           c.Update.Remote,
		NoFetch:          c.Update.NoFetch,
		Force:            c.Update.Force,
		Recursive:        c.Update.Recursive,
		Reference:        c.Update.Reference,
		Dissociate:       c.Update.Dissociate,
		Depth:            c.Update.Depth,
		Jobs:             c.Update.Jobs,
		SingleBranch:     tristate(c.Update.SingleBranch),
		RecommendShallow: tristate(c.Update.RecommendShallow),
		Quiet:            c.Output.Quiet,
	}
	switch {
	case c.Update.Checkout:
		opts.Strategy = submodule.StrategyCheckout
	case c.Update.Merge:
		opts.Strategy = submodule.StrategyMerge
	case c.Update.Rebase:
		opts.Strategy = submodule.StrategyRebase
	}
	return opts
}

func tristate(v string) submodule.Tristate {
	switch v {
	case "true":
		return submodule.TriTrue
	case "false":
		return submodule.TriFalse
	default:
		return submodule.TriUnset
	}
}
