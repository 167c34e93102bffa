package nugetver

import "fmt"

// Range is the set of versions acceptable as an upgrade from a floor
// version. The floor itself is excluded: upgrading to the same version is
// not an upgrade.
type Range struct {
	floor             *Version
	includePrerelease bool
}

// NewFloorRange anchors a range at floor. Prerelease candidates satisfy the
// range only when includePrerelease is set.
func NewFloorRange(floor *Version, includePrerelease bool) Range {
	return Range{floor: floor, includePrerelease: includePrerelease}
}

// Floor returns the anchoring version.
func (r Range) Floor() *Version { return r.floor }

// IncludePrerelease reports whether prerelease candidates are accepted.
func (r Range) IncludePrerelease() bool { return r.includePrerelease }

// Satisfies reports whether v is a valid upgrade target.
func (r Range) Satisfies(v *Version) bool {
	if v == nil || r.floor == nil {
		return false
	}
	if v.IsPrerelease() && !r.includePrerelease {
		return false
	}
	return v.GreaterThan(r.floor)
}

// String renders the range in NuGet interval notation, e.g. "(1.0.0, )".
func (r Range) String() string {
	if r.floor == nil {
		return "(, )"
	}
	return fmt.Sprintf("(%s, )", r.floor)
}

// Delta describes how far apart two versions are per component.
type Delta struct {
	Major    int64
	Minor    int64
	Patch    int64
	Revision int64
}

// IsZero returns true when the numeric components are identical.
func (d Delta) IsZero() bool {
	return d.Major == 0 && d.Minor == 0 && d.Patch == 0 && d.Revision == 0
}

// Diff returns the component-wise difference to - from.
func Diff(from, to *Version) Delta {
	return Delta{
		Major:    int64(to.Major()) - int64(from.Major()),
		Minor:    int64(to.Minor()) - int64(from.Minor()),
		Patch:    int64(to.Patch()) - int64(from.Patch()),
		Revision: int64(to.Revision()) - int64(from.Revision()),
	}
}

// UpdateType classifies an upgrade as "major", "minor", "patch", "revision"
// or, when only the release label moved, "prerelease".
func UpdateType(from, to *Version) string {
	d := Diff(from, to)
	switch {
	case d.Major != 0:
		return "major"
	case d.Minor != 0:
		return "minor"
	case d.Patch != 0:
		return "patch"
	case d.Revision != 0:
		return "revision"
	default:
		return "prerelease"
	}
}
