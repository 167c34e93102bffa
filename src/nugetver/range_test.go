package nugetver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange_Satisfies(t *testing.T) {
	tests := []struct {
		name       string
		floor      string
		prerelease bool
		candidate  string
		want       bool
	}{
		{"newer stable", "1.0.0", false, "1.2.0", true},
		{"equal", "1.0.0", false, "1.0.0", false},
		{"equal different form", "1.0", false, "1.0.0", false},
		{"older", "2.0.0", false, "1.9.0", false},
		{"newer revision", "1.0.0", false, "1.0.0.1", true},
		{"prerelease excluded", "1.0.0", false, "1.1.0-beta", false},
		{"prerelease included", "1.0.0", true, "1.1.0-beta", true},
		{"prerelease of floor included", "1.0.0-alpha", true, "1.0.0-beta", true},
		{"stable above prerelease floor", "1.0.0-beta", false, "1.0.0", true},
		{"older prerelease included", "1.0.0", true, "1.0.0-rc.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFloorRange(MustParse(tt.floor), tt.prerelease)
			assert.Equal(t, tt.want, r.Satisfies(MustParse(tt.candidate)))
		})
	}
}

func TestRange_NilSafe(t *testing.T) {
	r := NewFloorRange(MustParse("1.0.0"), true)
	assert.False(t, r.Satisfies(nil))
	assert.False(t, Range{}.Satisfies(MustParse("1.0.0")))
	assert.Equal(t, "(, )", Range{}.String())
	assert.Equal(t, "(1.0.0, )", r.String())
	assert.True(t, r.IncludePrerelease())
	assert.Equal(t, "1.0.0", r.Floor().String())
}

func TestUpdateType(t *testing.T) {
	tests := []struct {
		from, to, want string
	}{
		{"1.0.0", "2.0.0", "major"},
		{"1.0.0", "1.1.0", "minor"},
		{"1.0.0", "1.0.3", "patch"},
		{"1.0.0", "1.0.0.2", "revision"},
		{"1.0.0-beta", "1.0.0", "prerelease"},
		{"1.9.9", "2.0.0", "major"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, UpdateType(MustParse(tt.from), MustParse(tt.to)))
		})
	}
	assert.True(t, Diff(MustParse("1.0.0-a"), MustParse("1.0.0-b")).IsZero())
}
