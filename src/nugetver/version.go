// Package nugetver parses, orders and normalizes NuGet package versions.
//
// NuGet versions are SemVer 2.0 with two extensions: the patch component may
// be omitted ("1.2" means "1.2.0") and a fourth "revision" component is
// allowed ("1.2.3.4"). The major.minor.patch core and the release label are
// handled by Masterminds semver; the revision is tracked alongside it.
package nugetver

import (
	"fmt"
	"strconv"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// ErrInvalidVersion is returned when a string is not a valid NuGet version.
var ErrInvalidVersion = zerr.New("invalid version")

// Version is a parsed NuGet version.
type Version struct {
	// sv carries major.minor.patch plus the lowercased release label so that
	// label ordering is case-insensitive, as NuGet orders them.
	sv       *masterminds.Version
	revision uint64
	release  string // release label as written, without the leading '-'
	metadata string // build metadata as written, without the leading '+'
	original string
}

// Parse parses a NuGet version string such as "1.0", "1.2.3.4",
// "2.0.0-beta.1" or "3.1.0+build.7". Surrounding whitespace is ignored.
// A leading "v" is not accepted.
func Parse(s string) (*Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, zerr.With(ErrInvalidVersion, "version", s)
	}

	rest := raw
	var metadata, release string
	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		metadata = rest[idx+1:]
		rest = rest[:idx]
		if metadata == "" {
			return nil, zerr.With(ErrInvalidVersion, "version", raw)
		}
	}
	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		release = rest[idx+1:]
		rest = rest[:idx]
		if release == "" {
			return nil, zerr.With(ErrInvalidVersion, "version", raw)
		}
	}

	parts := strings.Split(rest, ".")
	if len(parts) > 4 {
		return nil, zerr.With(ErrInvalidVersion, "version", raw)
	}
	var nums [4]uint64
	for i, p := range parts {
		if !isAllDigits(p) {
			return nil, zerr.With(ErrInvalidVersion, "version", raw)
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, zerr.With(ErrInvalidVersion, "version", raw)
		}
		nums[i] = n
	}

	core := fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2])
	if release != "" {
		core += "-" + strings.ToLower(release)
	}
	if metadata != "" {
		core += "+" + metadata
	}
	sv, err := masterminds.StrictNewVersion(core)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrInvalidVersion.Error()), "version", raw)
	}

	return &Version{
		sv:       sv,
		revision: nums[3],
		release:  release,
		metadata: metadata,
		original: raw,
	}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level literals.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Version) Major() uint64    { return v.sv.Major() }
func (v *Version) Minor() uint64    { return v.sv.Minor() }
func (v *Version) Patch() uint64    { return v.sv.Patch() }
func (v *Version) Revision() uint64 { return v.revision }

// Release returns the release label ("beta.1" for "1.0.0-beta.1").
func (v *Version) Release() string { return v.release }

// Metadata returns the build metadata ("build.7" for "1.0.0+build.7").
func (v *Version) Metadata() string { return v.metadata }

// Original returns the string the version was parsed from, trimmed.
func (v *Version) Original() string { return v.original }

// IsPrerelease reports whether the version carries a release label.
func (v *Version) IsPrerelease() bool { return v.release != "" }

// String returns the normalized form: Major.Minor.Patch, then .Revision when
// it is non-zero, then -Release when present. Build metadata is dropped.
func (v *Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.sv.Major(), v.sv.Minor(), v.sv.Patch())
	if v.revision > 0 {
		fmt.Fprintf(&b, ".%d", v.revision)
	}
	if v.release != "" {
		b.WriteByte('-')
		b.WriteString(v.release)
	}
	return b.String()
}

// Compare returns -1, 0 or 1 when v is lower than, equal to or higher than o.
// Components are compared in order major, minor, patch, revision, release
// label. A stable version sorts above any prerelease of the same numbers.
// Build metadata never affects ordering.
func (v *Version) Compare(o *Version) int {
	if c := cmpUint(v.sv.Major(), o.sv.Major()); c != 0 {
		return c
	}
	if c := cmpUint(v.sv.Minor(), o.sv.Minor()); c != 0 {
		return c
	}
	if c := cmpUint(v.sv.Patch(), o.sv.Patch()); c != 0 {
		return c
	}
	if c := cmpUint(v.revision, o.revision); c != 0 {
		return c
	}
	// Numbers are equal, so Masterminds decides on the release label alone.
	return v.sv.Compare(o.sv)
}

func (v *Version) GreaterThan(o *Version) bool { return v.Compare(o) > 0 }
func (v *Version) LessThan(o *Version) bool    { return v.Compare(o) < 0 }
func (v *Version) Equal(o *Version) bool       { return v.Compare(o) == 0 }

// Max returns the highest version in vs, or nil when vs is empty.
func Max(vs []*Version) *Version {
	var best *Version
	for _, v := range vs {
		if v == nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// isAllDigits returns true if s is non-empty and contains only digits.
func isAllDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
