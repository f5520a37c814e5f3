package submodule

import (
	"context"
	"fmt"
	"strings"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

// Initialize registers the selected submodules in the superproject's local
// configuration so later updates know where to clone from. Registering is
// idempotent: entries that already carry a url are left untouched, which is
// what lets the user adjust the url before the first clone.
func Initialize(ctx context.Context, g *git.Runner, console *output.Console, paths []string, pc PathContext) error {
	mods, err := modules.Load(workdir(g))
	if err != nil {
		return err
	}
	selected, unmatched := mods.Select(paths)
	if len(unmatched) > 0 {
		return fmt.Errorf("pathspec '%s' did not match any submodule", unmatched[0])
	}

	for _, sub := range selected {
		displayPath := pc.Display(sub.Path)

		urlKey := "submodule." + sub.Name + ".url"
		if existing, _ := g.Output(ctx, "config", "--get", urlKey); existing == "" {
			if sub.URL == "" {
				return fmt.Errorf("no url found for submodule path '%s' in %s", displayPath, modules.Filename)
			}
			url, err := resolveURL(ctx, g, sub.URL)
			if err != nil {
				return err
			}
			if err := g.Run(ctx, "config", urlKey, url); err != nil {
				return fmt.Errorf("failed to register url for submodule path '%s': %w", displayPath, err)
			}
			console.Info("Submodule '%s' (%s) registered for path '%s'", sub.Name, url, displayPath)
		}

		if sub.Update != "" {
			updateKey := "submodule." + sub.Name + ".update"
			if existing, _ := g.Output(ctx, "config", "--get", updateKey); existing == "" {
				if _, err := ParseStrategy(sub.Update); err != nil {
					return fmt.Errorf("%w for submodule path '%s'", err, displayPath)
				}
				if err := g.Run(ctx, "config", updateKey, sub.Update); err != nil {
					return fmt.Errorf("failed to register update mode for submodule path '%s': %w", displayPath, err)
				}
			}
		}
	}
	return nil
}

// resolveURL expands manifest-relative URLs ("./x", "../x") against the
// superproject's own remote URL, falling back to its toplevel path when no
// remote is configured.
func resolveURL(ctx context.Context, g *git.Runner, raw string) (string, error) {
	if !strings.HasPrefix(raw, "./") && !strings.HasPrefix(raw, "../") {
		return raw, nil
	}
	base, _ := g.Output(ctx, "config", "--get", "remote.origin.url")
	if base == "" {
		top, err := g.Output(ctx, "rev-parse", "--show-toplevel")
		if err != nil {
			return "", fmt.Errorf("cannot resolve relative url %q: superproject has neither a remote nor a toplevel: %w", raw, err)
		}
		base = top
	}
	return joinURL(base, raw), nil
}

func joinURL(base, rel string) string {
	base = strings.TrimSuffix(base, "/")
	for {
		switch {
		case strings.HasPrefix(rel, "./"):
			rel = rel[len("./"):]
		case strings.HasPrefix(rel, "../"):
			rel = rel[len("../"):]
			if i := strings.LastIndex(base, "/"); i >= 0 {
				base = base[:i]
			}
		default:
			return base + "/" + rel
		}
	}
}
