package submodule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"submod/internal/git"
	"submod/internal/modules"
	"submod/internal/output"
)

func TestCloneDepth(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		sub  modules.Submodule
		want int
	}{
		{name: "full history by default", want: 0},
		{name: "explicit depth wins", opts: Options{Depth: 5}, sub: modules.Submodule{Shallow: true}, want: 5},
		{name: "manifest recommendation", sub: modules.Submodule{Shallow: true}, want: 1},
		{name: "recommendation declined", opts: Options{RecommendShallow: TriFalse}, sub: modules.Submodule{Shallow: true}, want: 0},
		{name: "recommendation confirmed", opts: Options{RecommendShallow: TriTrue}, sub: modules.Submodule{Shallow: true}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cloneDepth(&tt.opts, &tt.sub); got != tt.want {
				t.Fatalf("cloneDepth = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCloner_UnmatchedPathTerminatesStream(t *testing.T) {
	dir := t.TempDir()
	manifest := "[submodule \"lib\"]\n\tpath = lib\n\turl = https://example.com/lib.git\n"
	if err := os.WriteFile(filepath.Join(dir, modules.Filename), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	c := &Cloner{
		Git:     git.NewRunner(dir),
		Console: output.NewConsole(nil, &stderr, false),
	}

	stream, err := c.Start(context.Background(), &Options{Jobs: 1}, []string{"nope"}, PathContext{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stream.Close()

	_, err = NewStreamReader(stream).Next()
	var unmatched *UnmatchedError
	if !errors.As(err, &unmatched) {
		t.Fatalf("expected UnmatchedError, got %v", err)
	}
	if unmatched.Status != 1 {
		t.Fatalf("Status = %d, want 1", unmatched.Status)
	}
	if !strings.Contains(stderr.String(), "pathspec 'nope' did not match any submodule") {
		t.Fatalf("missing pathspec diagnostic:\n%s", stderr.String())
	}
}

// newGitRepo initializes a repository at dir with one empty commit and
// returns its head OID.
func newGitRepo(t *testing.T, dir string) string {
	t.Helper()
	execGit(t, "", "init", "-q", "-b", "main", dir)
	execGit(t, dir, "config", "user.email", "submod@example.com")
	execGit(t, dir, "config", "user.name", "submod")
	execGit(t, dir, "commit", "-q", "--allow-empty", "-m", "initial")
	return execGit(t, dir, "rev-parse", "HEAD")
}

func execGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := git.NewRunner(dir).Output(context.Background(), args...)
	if err != nil {
		t.Fatalf("git %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// A recursive run moves the process working directory between records while
// clone workers are still in flight. The batch must stay anchored at the
// superproject it started in: a worker whose turn comes during a descent
// still has to find the registered url, the index gitlink and the clone
// target there.
func TestCloner_BatchAnchorSurvivesConsumerChdir(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	work, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	lib := filepath.Join(work, "lib")
	libOID := newGitRepo(t, lib)

	super := filepath.Join(work, "super")
	newGitRepo(t, super)
	achild := filepath.Join(super, "achild")
	achildOID := newGitRepo(t, achild)

	manifest := fmt.Sprintf(
		"[submodule \"achild\"]\n\tpath = achild\n\turl = %s\n[submodule \"zfresh\"]\n\tpath = zfresh\n\turl = %s\n",
		achild, lib)
	if err := os.WriteFile(filepath.Join(super, modules.Filename), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	execGit(t, super, "update-index", "--add", "--cacheinfo", "160000,"+achildOID+",achild")
	execGit(t, super, "update-index", "--add", "--cacheinfo", "160000,"+libOID+",zfresh")
	execGit(t, super, "config", "submodule.achild.url", achild)
	execGit(t, super, "config", "submodule.zfresh.url", lib)

	t.Chdir(super)

	var stderr bytes.Buffer
	c := &Cloner{
		Git:     git.NewRunner(""),
		Console: output.NewConsole(nil, &stderr, false),
	}
	stream, err := c.Start(context.Background(), &Options{Jobs: 1}, nil, PathContext{})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stream.Close()
	reader := NewStreamReader(stream)

	// With one job the pipe write for the first record blocks until this
	// read, so the second submodule's git work has not started yet.
	first, err := reader.Next()
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if first.Path != "achild" || first.JustCreated {
		t.Fatalf("first record = %+v, want populated achild", first)
	}

	// Move the process directory the way a descent into achild would.
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	second, err := reader.Next()
	if err != nil {
		t.Fatalf("second record: %v\nstderr:\n%s", err, stderr.String())
	}
	if second.Path != "zfresh" || !second.JustCreated {
		t.Fatalf("second record = %+v, want fresh zfresh clone", second)
	}
	if second.TargetOID != libOID {
		t.Fatalf("TargetOID = %s, want %s", second.TargetOID, libOID)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Fatalf("after last record: err = %v, want io.EOF", err)
	}

	if !git.HasGitDir(filepath.Join(super, "zfresh")) {
		t.Fatalf("zfresh was not cloned under the superproject")
	}
	if strings.Contains(stderr.String(), "not initialized") {
		t.Fatalf("registered submodule reported uninitialized:\n%s", stderr.String())
	}
}
