package submodule

import "submod/internal/git"

// Record is one clone-phase result: a submodule whose working copy exists and
// is ready for the update procedure. CurrentOID is set if and only if
// JustCreated is false.
type Record struct {
	Path        string
	TargetOID   string
	CurrentOID  string
	JustCreated bool
	// DisplayPath is Path combined with the ambient prefixes, for messages.
	DisplayPath string
}

// PathContext carries path composition state across nesting levels.
type PathContext struct {
	// SuperPrefix is the cumulative logical path from the true root. It is
	// used in messages and handed to nested clone-phase invocations.
	SuperPrefix string
	// WorktreePrefix is the filesystem navigation offset from the process's
	// current location. It is reset to empty on each recursive descent,
	// because the descent changes the ambient location itself.
	WorktreePrefix string
}

// Display composes the user-facing path for a submodule at path.
func (c PathContext) Display(path string) string {
	if c.WorktreePrefix != "" {
		return git.RelPath(c.WorktreePrefix, path)
	}
	return git.JoinPrefix(c.SuperPrefix, path)
}

// Child returns the context for descending into the submodule behind rec.
// The new SuperPrefix is the record's display path plus a trailing separator;
// the worktree prefix resets because the caller switches the working
// directory into the submodule for the nested call.
func (c PathContext) Child(rec *Record) PathContext {
	return PathContext{SuperPrefix: rec.DisplayPath + "/"}
}

// Outcome is the update executor's classified result. Code follows a fixed
// taxonomy:
//
//	0       update succeeded; Message is relayed and recursion is eligible
//	1       update failed non-fatally; recorded, batch continues
//	2, 128  the operation died; the whole batch aborts with that code
//	3       no update was necessary; silent continue
type Outcome struct {
	Code    int
	Message string
}
