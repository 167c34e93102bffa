package output

import (
	"fmt"
	"sort"
	"strings"
)

// MaxApplied caps the number of applied updates listed in a summary.
const MaxApplied = 20

// AppliedDep is the view model for a single applied update.
type AppliedDep struct {
	Name       string
	OldVer     string
	NewVer     string
	UpdateType string // "major", "minor", "patch", "revision", "prerelease"
}

// SkippedGroup is a pre-aggregated skip summary entry.
type SkippedGroup struct {
	Reason string
	Count  int
}

// SectionApplied renders the "Updated (N)" or "Would update (N)" block.
func SectionApplied(sec *Section, header string, updates []AppliedDep, color bool) {
	if len(updates) == 0 {
		return
	}

	sec.Row("")
	sec.Row("%s", bold(color, fmt.Sprintf("%s (%d)", header, len(updates))))

	show := len(updates)
	if show > MaxApplied {
		show = MaxApplied
	}

	for i := 0; i < show; i++ {
		u := updates[i]
		sec.Row("  %s", strings.TrimSpace(u.Name))

		line := fmt.Sprintf("    %s → %s", strings.TrimSpace(u.OldVer), strings.TrimSpace(u.NewVer))
		if typ := strings.TrimSpace(u.UpdateType); typ != "" {
			line += "  " + Dimmed(typ, color)
		}
		sec.Row("%s", line)
	}

	if len(updates) > MaxApplied {
		remaining := len(updates) - MaxApplied
		sec.Row("%s", Dimmed(fmt.Sprintf("  … and %d more (see --report)", remaining), color))
	}

	sec.Row("")
}

// SectionSkipped renders the "Unchanged (N)" block (pre-aggregated).
func SectionSkipped(sec *Section, header string, groups []SkippedGroup, color bool) {
	if len(groups) == 0 {
		return
	}

	total := 0
	for _, g := range groups {
		total += g.Count
	}

	sec.Row("")
	sec.Row("%s", bold(color, fmt.Sprintf("%s (%d)", header, total)))

	// Sort by count desc, then reason asc.
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Reason < groups[j].Reason
	})

	for _, g := range groups {
		sec.Row("  %-22s %d", g.Reason, g.Count)
	}

	sec.Row("")
}
