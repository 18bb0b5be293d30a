// Package status is the status engine (spec §4.7): it turns a set of
// listing targets into a stream of status records using a two-tier
// pipeline, a fast synchronous pass for cheap per-target facts and a
// slow concurrent pass for pairwise/remote/CI queries.
//
// Grounded on the teacher's internal/git/status.go (StatusChecker) for
// the fast-tier local checks, generalized from booleans to the typed
// WorkingTreeFlags/Classification values spec.md §3-§4.7 define, and
// on internal/services' worker-pool patterns for the slow tier —
// rewritten here on golang.org/x/sync/errgroup instead of a hand-rolled
// channel pool.
package status

import "time"

// Target is one row to produce a status record for.
type Target struct {
	Branch       string
	WorktreePath string // "" if the branch has no worktree
	HasUpstream  bool
}

// Classification is the integration classifier's sum type (spec §4.7,
// §9 Design Notes: "the integration classifier is a sum type, not a
// cluster of booleans").
type Classification int

const (
	ClassUnknown Classification = iota
	ClassIsMain
	ClassEmpty
	ClassSameCommit
	ClassAncestor
	ClassTreesMatch
	ClassNoAddedChanges
	ClassMergeAddsNothing
	ClassWouldConflict
	ClassAhead
	ClassBehind
	ClassDiverged
)

func (c Classification) String() string {
	switch c {
	case ClassIsMain:
		return "is_main"
	case ClassEmpty:
		return "empty"
	case ClassSameCommit:
		return "same_commit"
	case ClassAncestor:
		return "ancestor"
	case ClassTreesMatch:
		return "trees_match"
	case ClassNoAddedChanges:
		return "no_added_changes"
	case ClassMergeAddsNothing:
		return "merge_adds_nothing"
	case ClassWouldConflict:
		return "would_conflict"
	case ClassAhead:
		return "ahead"
	case ClassBehind:
		return "behind"
	case ClassDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// Integrated reports whether this classification means the branch's
// work already reached the default branch, so it is safe to remove.
func (c Classification) Integrated() bool {
	switch c {
	case ClassEmpty, ClassSameCommit, ClassAncestor, ClassTreesMatch,
		ClassNoAddedChanges, ClassMergeAddsNothing:
		return true
	default:
		return false
	}
}

// CellState marks whether a slow-tier value is present, still
// pending, or could not be determined before its deadline.
type CellState int

const (
	CellPending CellState = iota
	CellReady
	CellUnknown
	CellError
)

// AheadBehindCell is the slow-tier local ahead/behind-vs-default cell.
type AheadBehindCell struct {
	State  CellState
	Ahead  int
	Behind int
}

// CIStatus is one branch's CI/PR state (spec §4.7 CI status).
type CIStatus struct {
	State   CellState
	Status  string // "success" | "failure" | "pending" | "none"
	URL     string
	Stale   bool
	Warning string
}

// Record is one row's status, filled progressively: the fast tier
// fills Branch..Operation synchronously, the slow tier fills the rest
// as each task completes (spec §4.7 progressive rendering).
type Record struct {
	Branch       string
	WorktreePath string
	HeadSha      string
	ShortSha     string
	Message      string
	Age          time.Time
	Dirty        bool
	Operation    string // "" | "rebase" | "merge" | "cherry-pick"

	LocalAheadBehind  AheadBehindCell
	RemoteAheadBehind AheadBehindCell
	Classification    Classification
	ClassState        CellState
	CI                CIStatus
}
