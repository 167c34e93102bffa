package cmd

import (
	"io"
	"path/filepath"
	"time"

	"github.com/sofmeright/nupdater/src/output"
	"github.com/sofmeright/nupdater/src/updater"
)

// renderSummary prints the framed "Update" section for a finished run.
func renderSummary(w io.Writer, result *updater.Result, elapsed time.Duration, color bool) {
	output.SectionStart(w, "nupdater_update", "Update")
	defer output.SectionEnd(w, "nupdater_update")

	sec := output.NewSection(w, "Update", elapsed, color)
	sec.Row("%-16s%s", "manifest", result.Manifest)
	sec.Row("%-16s%d", "packages", len(result.Outcomes))

	header := "Updated"
	if result.DryRun {
		header = "Would update"
	}
	output.SectionApplied(sec, header, toOutputApplied(result.Applied()), color)
	output.SectionSkipped(sec, "Unchanged", aggregateSkipped(result), color)

	sec.Separator()
	switch {
	case result.Saved:
		abs, _ := filepath.Abs(result.Manifest)
		output.RowStatus(sec, "saved", abs, "success", color)
	case result.DryRun:
		output.RowStatus(sec, "saved", "dry run", "skipped", color)
	}
	sec.Close()
}

func toOutputApplied(outcomes []updater.Outcome) []output.AppliedDep {
	out := make([]output.AppliedDep, len(outcomes))
	for i, o := range outcomes {
		out[i] = output.AppliedDep{
			Name:       o.Name,
			OldVer:     o.Current,
			NewVer:     o.Target,
			UpdateType: o.UpdateType,
		}
	}
	return out
}

// aggregateSkipped groups every outcome that left its declaration unchanged
// by decision.
func aggregateSkipped(result *updater.Result) []output.SkippedGroup {
	var groups []output.SkippedGroup
	for _, d := range []updater.Decision{updater.DecisionUpToDate, updater.DecisionNotFound, updater.DecisionIgnored} {
		if n := result.Count(d); n > 0 {
			groups = append(groups, output.SkippedGroup{Reason: string(d), Count: n})
		}
	}
	return groups
}
