package updater

import (
	"context"

	"github.com/sofmeright/nupdater/src/nugetver"
)

// Registry resolves the newest available version of a package.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// LatestVersion returns the highest listed version of name, or nil when
	// the registry has none. Prereleases are considered only when
	// includePrerelease is set.
	LatestVersion(ctx context.Context, name string, includePrerelease bool) (*nugetver.Version, error)
}
