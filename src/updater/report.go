package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sofmeright/nupdater/src/version"
)

// reportJSON is the top-level structure of the report file (schemaVersion 1).
type reportJSON struct {
	SchemaVersion     int             `json:"schemaVersion"`
	GeneratedAt       string          `json:"generatedAt"`
	NupdaterVersion   string          `json:"nupdaterVersion"`
	Manifest          string          `json:"manifest"`
	IncludePrerelease bool            `json:"includePrerelease"`
	DryRun            bool            `json:"dryRun"`
	Deps              []reportDepJSON `json:"deps"`
}

// reportDepJSON is the per-declaration entry.
// Field names are frozen; never rename or reorder.
type reportDepJSON struct {
	Name       string `json:"name"`
	Line       int    `json:"line"`
	Current    string `json:"current"`
	Latest     string `json:"latest"`
	Target     string `json:"target"`
	UpdateType string `json:"updateType"`
	Decision   string `json:"decision"`
}

// WriteReport writes a JSON description of result to path, creating parent
// directories as needed.
func WriteReport(path string, result *Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}

	rj := reportJSON{
		SchemaVersion:     1,
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		NupdaterVersion:   version.Version,
		Manifest:          result.Manifest,
		IncludePrerelease: result.IncludePrerelease,
		DryRun:            result.DryRun,
		Deps:              make([]reportDepJSON, 0, len(result.Outcomes)),
	}

	for _, o := range result.Outcomes {
		rj.Deps = append(rj.Deps, reportDepJSON{
			Name:       o.Name,
			Line:       o.Line,
			Current:    o.Current,
			Latest:     o.Latest,
			Target:     o.Target,
			UpdateType: o.UpdateType,
			Decision:   string(o.Decision),
		})
	}

	data, err := json.MarshalIndent(rj, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
