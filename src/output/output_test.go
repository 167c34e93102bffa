package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResultLines(t *testing.T) {
	var buf bytes.Buffer

	Updating(&buf, "Foo", "1.2.0")
	UpToDate(&buf, "Bar")
	NotFound(&buf, "Baz")
	Ignored(&buf, "Qux")
	Failure(&buf, errors.New("boom"))
	Usage(&buf)

	want := strings.Join([]string{
		"Updating 'Foo' to version 1.2.0.",
		"Package 'Bar' is up to date.",
		"Warning: Package 'Baz' not found in the NuGet repository.",
		"Skipping 'Qux' (ignored).",
		"An error occurred: boom",
		"Usage: nupdater <path_to_csproj> [--include-pre-release]",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWarning(t *testing.T) {
	var buf bytes.Buffer
	Warning(&buf, "careful", false)
	assert.Equal(t, "warning: careful\n", buf.String())

	buf.Reset()
	Warning(&buf, "careful", true)
	assert.Contains(t, buf.String(), colorYellow)
}

func TestSection_Summary(t *testing.T) {
	var buf bytes.Buffer

	sec := NewSection(&buf, "Summary", 1500*time.Millisecond, false)
	SectionApplied(sec, "Updated", []AppliedDep{
		{Name: "Foo", OldVer: "1.0.0", NewVer: "1.2.0", UpdateType: "minor"},
	}, false)
	SectionSkipped(sec, "Unchanged", []SkippedGroup{
		{Reason: "not found", Count: 1},
		{Reason: "up to date", Count: 3},
	}, false)
	sec.Separator()
	RowStatus(sec, "manifest", "app.csproj", "success", false)
	sec.Close()

	out := buf.String()
	assert.Contains(t, out, "── Summary ")
	assert.Contains(t, out, " 1.5s ──")
	assert.Contains(t, out, "    │ Updated (1)")
	assert.Contains(t, out, "    │     1.0.0 → 1.2.0  minor")
	assert.Contains(t, out, "    │ Unchanged (4)")
	assert.Contains(t, out, "manifest — app.csproj ✓")

	// up to date (3) sorts before not found (1)
	assert.Less(t, strings.Index(out, "up to date"), strings.Index(out, "not found"))
}

func TestSectionApplied_Truncates(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Summary", 0, false)

	updates := make([]AppliedDep, MaxApplied+3)
	for i := range updates {
		updates[i] = AppliedDep{Name: "P", OldVer: "1.0.0", NewVer: "2.0.0"}
	}
	SectionApplied(sec, "Updated", updates, false)

	assert.Contains(t, buf.String(), "… and 3 more")
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "<1ms", formatElapsed(10*time.Microsecond))
	assert.Equal(t, "250ms", formatElapsed(250*time.Millisecond))
	assert.Equal(t, "2.0s", formatElapsed(2*time.Second))
	assert.Equal(t, "1m5.0s", formatElapsed(65*time.Second))
}

func TestUseColor_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, UseColor())
}
