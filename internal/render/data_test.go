package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worktrunk/worktrunk/internal/status"
)

func TestToListEntryMarksIntegratedBranch(t *testing.T) {
	rec := status.Record{
		Branch:         "beta",
		Classification: status.ClassTreesMatch,
		ClassState:     status.CellReady,
	}
	entry := toListEntry(rec)
	assert.Equal(t, "integrated", entry.MainState)
	assert.Equal(t, "trees_match", entry.Integration)
}

func TestToListEntryReportsDivergedWithCounts(t *testing.T) {
	rec := status.Record{
		Branch:           "alpha",
		Classification:   status.ClassDiverged,
		ClassState:       status.CellReady,
		Dirty:            true,
		LocalAheadBehind: status.AheadBehindCell{State: status.CellReady, Ahead: 3, Behind: 1},
	}
	entry := toListEntry(rec)
	assert.Equal(t, "diverged", entry.MainState)
	assert.Empty(t, entry.Integration)
	assert.True(t, entry.WorkingTree.Modified)
	assert.Equal(t, 3, entry.Main.Ahead)
	assert.Equal(t, 1, entry.Main.Behind)
}

func TestToListEntryPendingClassificationIsUnknown(t *testing.T) {
	rec := status.Record{Branch: "gamma"}
	entry := toListEntry(rec)
	assert.Equal(t, "unknown", entry.MainState)
}

func TestToListEntryEmptyBranchIsNotIntegrated(t *testing.T) {
	rec := status.Record{
		Branch:         "fresh",
		Classification: status.ClassEmpty,
		ClassState:     status.CellReady,
	}
	entry := toListEntry(rec)
	assert.Equal(t, "empty", entry.MainState)
	assert.Empty(t, entry.Integration)
}

func TestToListEntrySameCommitBranchIsNotIntegrated(t *testing.T) {
	rec := status.Record{
		Branch:         "twin",
		Classification: status.ClassSameCommit,
		ClassState:     status.CellReady,
	}
	entry := toListEntry(rec)
	assert.Equal(t, "same_commit", entry.MainState)
	assert.Empty(t, entry.Integration)
}
