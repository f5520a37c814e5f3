package submodule

import "fmt"

// fatalSentinel is the recursion result that aborts the whole batch. Any
// other nonzero result from a nested run is recorded and siblings continue.
const fatalSentinel = 128

// maxDepth bounds recursive descent. Submodule trees deeper than this are
// almost certainly cyclic; exceeding the bound is a fatal error instead of
// unbounded recursion.
const maxDepth = 64

// UnmatchedError terminates a record stream whose pathspec selection matched
// nothing. The embedded status is returned verbatim by the orchestrator
// without processing any records.
type UnmatchedError struct {
	Status int
}

func (e *UnmatchedError) Error() string {
	return fmt.Sprintf("unmatched pathspec (status %d)", e.Status)
}

// Aggregator collects ordered, duplicate-preserving failure messages for one
// sibling batch. It is never partially flushed: entries are reported together
// after the batch completes, and a non-empty aggregate forces the batch
// status to failure even though every attemptable sibling was attempted.
type Aggregator struct {
	entries []string
}

func (a *Aggregator) Append(msg string) {
	a.entries = append(a.entries, msg)
}

func (a *Aggregator) Len() int { return len(a.entries) }

// Entries returns the messages in the order encountered.
func (a *Aggregator) Entries() []string { return a.entries }
