package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// initRepo creates a repository with one commit and returns its path.
func initRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	r := NewRunner(dir)
	ctx := context.Background()
	for _, args := range [][]string{
		{"init", "-q", "-b", "main"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "test"},
		{"commit", "--allow-empty", "-q", "-m", "initial"},
	} {
		if err := r.Run(ctx, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	return dir
}

func TestRunnerOutput_TrimsStdout(t *testing.T) {
	dir := initRepo(t)
	r := NewRunner(dir)
	out, err := r.Output(context.Background(), "rev-parse", "HEAD")
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if len(out) != 40 || strings.ContainsAny(out, " \n") {
		t.Fatalf("rev-parse HEAD = %q, want bare 40-char oid", out)
	}
}

func TestRunnerOutput_FoldsStderrIntoError(t *testing.T) {
	requireGit(t)
	r := NewRunner(t.TempDir())
	_, err := r.Output(context.Background(), "rev-parse", "HEAD")
	if err == nil {
		t.Fatal("expected error outside a repository")
	}
	if !strings.Contains(err.Error(), "rev-parse") {
		t.Fatalf("error does not name the command: %v", err)
	}
}

func TestRunnerAt_DerivesWorkingDirectory(t *testing.T) {
	r := NewRunner("base", WithVerbose(true, &bytes.Buffer{}))
	derived := r.At("other")
	if derived.Dir() != "other" {
		t.Fatalf("Dir = %q, want %q", derived.Dir(), "other")
	}
	if r.Dir() != "base" {
		t.Fatalf("original runner mutated: %q", r.Dir())
	}
	if !derived.verbose {
		t.Fatal("derived runner dropped verbose setting")
	}
}

func TestRunnerVerboseLogging(t *testing.T) {
	dir := initRepo(t)
	var log bytes.Buffer
	r := NewRunner(dir, WithVerbose(true, &log))
	if err := r.Run(context.Background(), "status", "--porcelain"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(log.String(), "[verbose] git status --porcelain") {
		t.Fatalf("missing invocation log:\n%s", log.String())
	}
}

func TestExitCode(t *testing.T) {
	requireGit(t)
	r := NewRunner(t.TempDir())

	// A git process that ran and failed yields its exit status.
	err := r.Run(context.Background(), "rev-parse", "HEAD")
	if err == nil {
		t.Fatal("expected failure outside a repository")
	}
	if code := ExitCode(err); code <= 0 {
		t.Fatalf("ExitCode = %d, want positive", code)
	}

	// Anything that is not a completed process maps to -1.
	if code := ExitCode(errors.New("not an exec error")); code != -1 {
		t.Fatalf("ExitCode = %d, want -1", code)
	}
	if code := ExitCode(nil); code != -1 {
		t.Fatalf("ExitCode(nil) = %d, want -1", code)
	}
}

func TestHeadOIDAndCurrentBranch(t *testing.T) {
	dir := initRepo(t)

	oid, err := HeadOID(dir)
	if err != nil {
		t.Fatalf("HeadOID: %v", err)
	}
	r := NewRunner(dir)
	want, err := r.Output(context.Background(), "rev-parse", "HEAD")
	if err != nil {
		t.Fatalf("rev-parse: %v", err)
	}
	if oid != want {
		t.Fatalf("HeadOID = %q, rev-parse = %q", oid, want)
	}

	branch, err := CurrentBranch(dir)
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Fatalf("CurrentBranch = %q, want %q", branch, "main")
	}

	// Detach and expect the empty branch name.
	if err := r.Run(context.Background(), "checkout", "-q", "--detach"); err != nil {
		t.Fatalf("detach: %v", err)
	}
	branch, err = CurrentBranch(dir)
	if err != nil {
		t.Fatalf("CurrentBranch detached: %v", err)
	}
	if branch != "" {
		t.Fatalf("CurrentBranch detached = %q, want empty", branch)
	}
}

func TestHasGitDir(t *testing.T) {
	dir := t.TempDir()
	if HasGitDir(dir) {
		t.Fatal("empty directory reported a git dir")
	}

	// A gitfile pointer counts the same as a real directory.
	if err := os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: ../elsewhere\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !HasGitDir(dir) {
		t.Fatal("gitfile pointer not recognized")
	}
}

func TestIsPopulated(t *testing.T) {
	dir := t.TempDir()
	if IsPopulated(dir) {
		t.Fatal("empty directory reported populated")
	}
	if IsPopulated(filepath.Join(dir, "missing")) {
		t.Fatal("missing directory reported populated")
	}
	if err := os.WriteFile(filepath.Join(dir, "f"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsPopulated(dir) {
		t.Fatal("directory with contents reported empty")
	}
}

func TestRelPathAndJoinPrefix(t *testing.T) {
	if got := RelPath("", "a/b"); got != "a/b" {
		t.Fatalf("RelPath empty base = %q", got)
	}
	if got := RelPath("a", "a/b/c"); got != "b/c" {
		t.Fatalf("RelPath = %q, want b/c", got)
	}
	if got := JoinPrefix("", "lib"); got != "lib" {
		t.Fatalf("JoinPrefix empty prefix = %q", got)
	}
	if got := JoinPrefix("outer/", "lib"); got != "outer/lib" {
		t.Fatalf("JoinPrefix = %q, want outer/lib", got)
	}
}
