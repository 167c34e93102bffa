// Package output renders nupdater's user-facing lines and summaries.
//
// Per-declaration result lines are plain text with a fixed wording so that
// scripts can match them; color is only used inside the optional summary
// section.
package output

import (
	"fmt"
	"io"
	"os"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// UsageLine is printed when the manifest path is missing.
const UsageLine = "Usage: nupdater <path_to_csproj> [--include-pre-release]"

// Usage writes the usage line.
func Usage(w io.Writer) {
	fmt.Fprintln(w, UsageLine)
}

// Updating reports that name is being moved to version.
func Updating(w io.Writer, name, version string) {
	fmt.Fprintf(w, "Updating '%s' to version %s.\n", name, version)
}

// UpToDate reports that no newer acceptable version exists for name.
func UpToDate(w io.Writer, name string) {
	fmt.Fprintf(w, "Package '%s' is up to date.\n", name)
}

// NotFound warns that the registry has no versions for name.
func NotFound(w io.Writer, name string) {
	fmt.Fprintf(w, "Warning: Package '%s' not found in the NuGet repository.\n", name)
}

// Ignored reports that name was skipped by an ignore pattern.
func Ignored(w io.Writer, name string) {
	fmt.Fprintf(w, "Skipping '%s' (ignored).\n", name)
}

// Failure reports an error that ended the run.
func Failure(w io.Writer, err error) {
	fmt.Fprintf(w, "An error occurred: %v\n", err)
}

// Warning prints a non-fatal notice, e.g. a configuration warning.
func Warning(w io.Writer, msg string, color bool) {
	if color {
		fmt.Fprintf(w, "%swarning:%s %s\n", colorYellow, colorReset, msg)
		return
	}
	fmt.Fprintf(w, "warning: %s\n", msg)
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor returns true if colored output should be used.
// Respects NO_COLOR env, TERM=dumb, and terminal detection.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

func bold(color bool, s string) string {
	if !color {
		return s
	}
	return colorBold + s + colorReset
}
