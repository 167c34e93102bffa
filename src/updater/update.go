// Package updater runs the manifest update pipeline: read the package
// declarations, resolve the latest version of each, and rewrite upgraded
// versions in place.
//
// The run is strictly sequential. Every registry lookup completes before
// the next declaration is looked at, and the manifest is written once, after
// all declarations have been resolved. Any error aborts the run before the
// write, leaving the file untouched.
package updater

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"go.trai.ch/zerr"

	"github.com/sofmeright/nupdater/src/manifest"
	"github.com/sofmeright/nupdater/src/nugetver"
	"github.com/sofmeright/nupdater/src/output"
	"github.com/sofmeright/nupdater/src/vcs"
)

// ErrManifestDirty is returned when RequireClean is set and the manifest has
// uncommitted changes.
var ErrManifestDirty = zerr.New("manifest has uncommitted changes")

// Options controls an update run.
type Options struct {
	IncludePrerelease bool     // prereleases are eligible as lookup results and upgrade targets
	Ignore            []string // package name globs to skip (case-insensitive)
	DryRun            bool     // resolve and report, never write
	RequireClean      bool     // refuse to run on a manifest with uncommitted git changes
}

// Decision is what happened to one declaration.
type Decision string

const (
	DecisionUpdate   Decision = "update"
	DecisionUpToDate Decision = "up-to-date"
	DecisionNotFound Decision = "not-found"
	DecisionIgnored  Decision = "ignored"
)

// Outcome records the decision for a single declaration.
type Outcome struct {
	Name       string
	Line       int
	Current    string // version declared in the manifest before the run
	Latest     string // normalized registry result, empty if none was fetched
	Target     string // version written back, set only for DecisionUpdate
	UpdateType string // "major", "minor", "patch", "revision", "prerelease"
	Decision   Decision
}

// Result holds the outcome of an update run.
type Result struct {
	Manifest          string
	IncludePrerelease bool
	DryRun            bool
	Saved             bool
	Outcomes          []Outcome
}

// Applied returns the outcomes that changed the manifest.
func (r *Result) Applied() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Decision == DecisionUpdate {
			out = append(out, o)
		}
	}
	return out
}

// Count returns the number of outcomes with decision d.
func (r *Result) Count(d Decision) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Decision == d {
			n++
		}
	}
	return n
}

// Updater updates package versions in a manifest.
type Updater struct {
	registry Registry
	out      io.Writer
	opts     Options
}

// New creates an Updater that resolves versions through registry and prints
// one result line per declaration to out.
func New(registry Registry, out io.Writer, opts Options) *Updater {
	return &Updater{registry: registry, out: out, opts: opts}
}

// Run processes every declaration in the manifest at manifestPath and saves
// the result back to the same path.
func (u *Updater) Run(ctx context.Context, manifestPath string) (*Result, error) {
	result := &Result{
		Manifest:          manifestPath,
		IncludePrerelease: u.opts.IncludePrerelease,
		DryRun:            u.opts.DryRun,
	}

	if u.opts.RequireClean {
		dirty, err := vcs.FileDirty(manifestPath)
		if err != nil {
			return result, fmt.Errorf("checking git status: %w", err)
		}
		if dirty {
			return result, zerr.With(ErrManifestDirty, "manifest", manifestPath)
		}
	}

	doc, err := manifest.Load(manifestPath)
	if err != nil {
		return result, err
	}

	decls := doc.Declarations()
	log.Debug().Str("manifest", manifestPath).Int("declarations", len(decls)).Msg("manifest loaded")

	for _, decl := range decls {
		outcome, err := u.process(ctx, doc, decl)
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if u.opts.DryRun {
		log.Debug().Str("manifest", manifestPath).Msg("dry run, manifest not written")
		return result, nil
	}

	if err := doc.Save(manifestPath); err != nil {
		return result, fmt.Errorf("saving manifest: %w", err)
	}
	result.Saved = true
	log.Debug().Str("manifest", manifestPath).Bool("changed", doc.Changed()).Msg("manifest saved")

	return result, nil
}

// process resolves one declaration and applies the upgrade to doc when one
// is available.
func (u *Updater) process(ctx context.Context, doc *manifest.Document, decl *manifest.Declaration) (Outcome, error) {
	o := Outcome{Name: decl.Name, Line: decl.Line, Current: decl.Version}

	if u.ignored(decl.Name) {
		output.Ignored(u.out, decl.Name)
		o.Decision = DecisionIgnored
		return o, nil
	}

	current, err := nugetver.Parse(decl.Version)
	if err != nil {
		return o, fmt.Errorf("package %q at line %d: %w", decl.Name, decl.Line, err)
	}
	rng := nugetver.NewFloorRange(current, u.opts.IncludePrerelease)

	latest, err := u.registry.LatestVersion(ctx, decl.Name, u.opts.IncludePrerelease)
	if err != nil {
		return o, fmt.Errorf("resolving %s: %w", decl.Name, err)
	}

	if latest == nil {
		output.NotFound(u.out, decl.Name)
		o.Decision = DecisionNotFound
		return o, nil
	}
	o.Latest = latest.String()

	if !rng.Satisfies(latest) {
		log.Debug().Str("package", decl.Name).Str("range", rng.String()).Str("latest", o.Latest).Msg("no upgrade")
		output.UpToDate(u.out, decl.Name)
		o.Decision = DecisionUpToDate
		return o, nil
	}

	output.Updating(u.out, decl.Name, o.Latest)
	doc.SetVersion(decl, o.Latest)

	o.Target = o.Latest
	o.UpdateType = nugetver.UpdateType(current, latest)
	o.Decision = DecisionUpdate
	return o, nil
}

// ignored returns true if name matches any ignore glob. NuGet package IDs
// are case-insensitive, so both sides are lowercased.
func (u *Updater) ignored(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range u.opts.Ignore {
		if matched, _ := path.Match(strings.ToLower(pattern), lower); matched {
			return true
		}
	}
	return false
}
