package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// Read-side repository plumbing. These use go-git directly instead of
// spawning a subprocess: they run once or more per submodule per batch and
// only ever read local state. go-git transparently follows gitfile
// indirection, so they work for absorbed submodule worktrees too.

// HeadOID returns the object id currently checked out at path.
func HeadOID(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("open repository at %s: %w", path, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD in %s: %w", path, err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the branch checked out at path, or "" when HEAD is
// detached.
func CurrentBranch(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("open repository at %s: %w", path, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD in %s: %w", path, err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// HasGitDir reports whether path contains a .git entry (directory or
// gitfile pointer). A submodule worktree without one has not been cloned or
// has lost its linkage.
func HasGitDir(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// IsPopulated reports whether path exists and contains anything besides an
// empty directory.
func IsPopulated(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}

// RelPath returns target expressed relative to base, in slash form. When no
// relative form exists (different roots), target is returned unchanged.
func RelPath(base, target string) string {
	if base == "" {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// JoinPrefix composes a logical display path from a cumulative prefix and a
// repository-relative path. The prefix, when non-empty, always carries a
// trailing separator.
func JoinPrefix(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return strings.TrimSuffix(prefix, "/") + "/" + path
}
