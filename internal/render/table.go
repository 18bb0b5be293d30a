package render

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/worktrunk/worktrunk/internal/status"
)

var (
	dimRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	aheadStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	behindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	conflictStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dirtyMarker    = "*"
	columnHeadings = []string{"BRANCH", "PATH", "HEAD", "STATUS", "CI"}
)

// Table renders one snapshot of status records (spec §4.7/§4.9's
// `table` verb). Rows whose branch is already integrated into the
// default branch are dimmed, matching spec's example 4 ("the row is
// marked dimmed in the table view").
//
// Grounded on the teacher's internal/tui/components/styles.go for
// color choices; width-fitting is left to text/tabwriter rather than
// hand-rolled column math, since the spec explicitly carves table
// "width math" out of scope (§1's Non-goals: "table rendering width
// math").
func Table(records []status.Record) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columnHeadings, "\t"))
	for _, rec := range records {
		fmt.Fprintln(tw, tableRow(rec))
	}
	tw.Flush()
}

func tableRow(rec status.Record) string {
	status := statusCell(rec)
	ci := ciCell(rec)
	row := strings.Join([]string{rec.Branch, rec.WorktreePath, rec.ShortSha, status, ci}, "\t")
	if rec.Classification.Integrated() {
		return style(dimRowStyle).Render(row)
	}
	return row
}

func statusCell(rec status.Record) string {
	parts := []string{rec.Classification.String()}
	if rec.Dirty {
		parts = append(parts, dirtyMarker)
	}
	if rec.LocalAheadBehind.State == status.CellReady {
		ab := rec.LocalAheadBehind
		if ab.Ahead > 0 {
			parts = append(parts, style(aheadStyle).Render(fmt.Sprintf("+%d", ab.Ahead)))
		}
		if ab.Behind > 0 {
			parts = append(parts, style(behindStyle).Render(fmt.Sprintf("-%d", ab.Behind)))
		}
	}
	if rec.Classification == status.ClassWouldConflict {
		parts = append(parts, style(conflictStyle).Render("conflict"))
	}
	return strings.Join(parts, " ")
}

func ciCell(rec status.Record) string {
	switch rec.CI.State {
	case status.CellReady:
		if rec.CI.Stale {
			return style(dimRowStyle).Render(rec.CI.Status)
		}
		return rec.CI.Status
	case status.CellUnknown:
		return "?"
	case status.CellError:
		return "error"
	default:
		return ""
	}
}
