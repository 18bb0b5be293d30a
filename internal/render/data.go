package render

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/worktrunk/worktrunk/internal/status"
)

// listEntry is the stable JSON schema for `list --format=json` (spec
// §6: "Fields are stable; unknown fields may be added but never
// removed without a minor-version bump").
type listEntry struct {
	Branch      string          `json:"branch"`
	Path        string          `json:"path,omitempty"`
	Head        string          `json:"head"`
	Message     string          `json:"message,omitempty"`
	MainState   string          `json:"main_state"`
	Integration string          `json:"integration_reason,omitempty"`
	WorkingTree workingTreeJSON `json:"working_tree"`
	Main        aheadBehindJSON `json:"main"`
	Remote      aheadBehindJSON `json:"remote,omitempty"`
	CI          *ciJSON         `json:"ci,omitempty"`
	Operation   string          `json:"operation,omitempty"`
}

type workingTreeJSON struct {
	Modified bool `json:"modified"`
}

type aheadBehindJSON struct {
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
	State  string `json:"state"`
}

type ciJSON struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Stale  bool   `json:"stale,omitempty"`
}

// Data renders records as the `list --format=json` array (spec §4.9's
// `data` verb). Always written to stdout, never stderr, so it composes
// with `| jq`.
func Data(records []status.Record) error {
	entries := make([]listEntry, len(records))
	for i, rec := range records {
		entries[i] = toListEntry(rec)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding list JSON: %w", err)
	}
	return nil
}

func toListEntry(rec status.Record) listEntry {
	mainState := "unknown"
	if rec.ClassState == status.CellReady {
		if isIntegrationReason(rec.Classification) {
			mainState = "integrated"
		} else {
			mainState = rec.Classification.String()
		}
	}

	entry := listEntry{
		Branch:      rec.Branch,
		Path:        rec.WorktreePath,
		Head:        rec.HeadSha,
		Message:     rec.Message,
		MainState:   mainState,
		WorkingTree: workingTreeJSON{Modified: rec.Dirty},
		Main: aheadBehindJSON{
			Ahead:  rec.LocalAheadBehind.Ahead,
			Behind: rec.LocalAheadBehind.Behind,
			State:  cellStateString(rec.LocalAheadBehind.State),
		},
		Remote: aheadBehindJSON{
			Ahead:  rec.RemoteAheadBehind.Ahead,
			Behind: rec.RemoteAheadBehind.Behind,
			State:  cellStateString(rec.RemoteAheadBehind.State),
		},
		Operation: rec.Operation,
	}
	if mainState == "integrated" {
		entry.Integration = rec.Classification.String()
	}
	if rec.CI.State == status.CellReady {
		entry.CI = &ciJSON{Status: rec.CI.Status, URL: rec.CI.URL, Stale: rec.CI.Stale}
	}
	return entry
}

// isIntegrationReason reports whether c is one of the four "the merge
// pipeline would do nothing new" classifications spec §3 groups under
// `main_state: "integrated"` (ancestor, trees_match, no_added_changes,
// merge_adds_nothing). ClassEmpty and ClassSameCommit are distinct
// main-relation states in their own right (spec §8: a zero-commit
// branch reports `main_state: "empty"`, not "integrated") even though
// Classification.Integrated() treats all six alike for the table's
// dimming and `list`'s default-view filtering.
func isIntegrationReason(c status.Classification) bool {
	switch c {
	case status.ClassAncestor, status.ClassTreesMatch, status.ClassNoAddedChanges, status.ClassMergeAddsNothing:
		return true
	default:
		return false
	}
}

func cellStateString(s status.CellState) string {
	switch s {
	case status.CellReady:
		return "ready"
	case status.CellUnknown:
		return "unknown"
	case status.CellError:
		return "error"
	default:
		return "pending"
	}
}
