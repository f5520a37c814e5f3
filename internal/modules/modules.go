package modules

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

// Filename is the submodule manifest at the root of a superproject.
const Filename = ".gitmodules"

// Submodule is one manifest entry: a nested repository tracked at Path,
// pinned by the superproject to a recorded commit.
type Submodule struct {
	Name   string
	Path   string
	URL    string
	Branch string // remote-tracking branch; empty means follow the superproject
	Update string // update strategy override: checkout, merge, rebase, none
	// Shallow records the manifest's recommendation to clone with limited
	// history. It only applies when the invocation does not choose explicitly.
	Shallow bool
}

// Modules is the parsed manifest, preserving file order.
type Modules struct {
	list   []*Submodule
	byPath map[string]*Submodule
	byName map[string]*Submodule
}

// Parse decodes a .gitmodules document.
func Parse(r io.Reader) (*Modules, error) {
	raw := format.New()
	if err := format.NewDecoder(r).Decode(raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Filename, err)
	}

	m := &Modules{
		byPath: make(map[string]*Submodule),
		byName: make(map[string]*Submodule),
	}
	for _, sub := range raw.Section("submodule").Subsections {
		entry := &Submodule{
			Name:    sub.Name,
			Path:    filepath.ToSlash(sub.Option("path")),
			URL:     sub.Option("url"),
			Branch:  sub.Option("branch"),
			Update:  sub.Option("update"),
			Shallow: sub.Option("shallow") == "true",
		}
		if entry.Path == "" {
			return nil, fmt.Errorf("submodule %q has no path", entry.Name)
		}
		m.list = append(m.list, entry)
		m.byPath[entry.Path] = entry
		m.byName[entry.Name] = entry
	}
	return m, nil
}

// Load reads the manifest from a superproject root. A missing manifest is an
// empty module set, not an error.
func Load(dir string) (*Modules, error) {
	f, err := os.Open(filepath.Join(dir, Filename))
	if os.IsNotExist(err) {
		return &Modules{byPath: map[string]*Submodule{}, byName: map[string]*Submodule{}}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// All returns the entries in manifest order.
func (m *Modules) All() []*Submodule { return m.list }

func (m *Modules) Len() int { return len(m.list) }

// ByPath looks an entry up by its repository-relative path.
func (m *Modules) ByPath(path string) (*Submodule, bool) {
	s, ok := m.byPath[filepath.ToSlash(path)]
	return s, ok
}

// ByName looks an entry up by its manifest name.
func (m *Modules) ByName(name string) (*Submodule, bool) {
	s, ok := m.byName[name]
	return s, ok
}

// Select resolves an explicit path list against the manifest. With no paths,
// every entry is selected. Selection preserves manifest order; requested
// paths that match no entry are returned separately so the caller can report
// them without starting any work.
func (m *Modules) Select(paths []string) (selected []*Submodule, unmatched []string) {
	if len(paths) == 0 {
		return m.list, nil
	}
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[filepath.ToSlash(filepath.Clean(p))] = false
	}
	for _, s := range m.list {
		if _, ok := want[s.Path]; ok {
			want[s.Path] = true
			selected = append(selected, s)
		}
	}
	for _, p := range paths {
		if !want[filepath.ToSlash(filepath.Clean(p))] {
			unmatched = append(unmatched, p)
		}
	}
	return selected, unmatched
}
