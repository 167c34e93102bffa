// Package nuget is a read-only client for NuGet v3 package registries.
//
// Only the two resources needed to answer "what is the newest version of
// this package" are used: the service index, to discover the registration
// base URL, and the registration index (plus any non-inlined pages).
package nuget

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"go.trai.ch/zerr"

	"github.com/sofmeright/nupdater/src/nugetver"
)

// DefaultServiceIndex is the public nuget.org v3 service index.
const DefaultServiceIndex = "https://api.nuget.org/v3/index.json"

// ErrNoRegistrationResource is returned when the service index does not
// advertise any RegistrationsBaseUrl resource.
var ErrNoRegistrationResource = zerr.New("service index has no registration resource")

// registrationTypes lists the RegistrationsBaseUrl flavours in order of
// preference. 3.6.0 is the only one that includes SemVer 2.0 packages.
var registrationTypes = []string{
	"RegistrationsBaseUrl/3.6.0",
	"RegistrationsBaseUrl/3.4.0",
	"RegistrationsBaseUrl/3.0.0-rc",
	"RegistrationsBaseUrl/3.0.0-beta",
	"RegistrationsBaseUrl",
}

// Options configures a Client.
type Options struct {
	ServiceIndex string // v3 index.json URL, DefaultServiceIndex when empty
	Timeout      int    // HTTP timeout in seconds (default 30)
	AuthEnv      string // env var holding a Bearer token, optional
	UserAgent    string
}

// Client queries a NuGet v3 registry.
type Client struct {
	http             *httpClient
	serviceIndex     string
	registrationBase string // discovered lazily from the service index
}

// NewClient creates a registry client.
func NewClient(opts Options) *Client {
	index := opts.ServiceIndex
	if index == "" {
		index = DefaultServiceIndex
	}
	return &Client{
		http:         newHTTPClient(opts.Timeout, opts.AuthEnv, opts.UserAgent),
		serviceIndex: index,
	}
}

// serviceIndexResponse is the v3 service index document.
type serviceIndexResponse struct {
	Version   string `json:"version"`
	Resources []struct {
		ID   string `json:"@id"`
		Type string `json:"@type"`
	} `json:"resources"`
}

// registrationIndex is the per-package registration document.
type registrationIndex struct {
	Count int                `json:"count"`
	Items []registrationPage `json:"items"`
}

// registrationPage groups leaves. Items is nil when the server did not
// inline the page and it must be fetched from ID.
type registrationPage struct {
	ID    string             `json:"@id"`
	Count int                `json:"count"`
	Lower string             `json:"lower"`
	Upper string             `json:"upper"`
	Items []registrationLeaf `json:"items"`
}

type registrationLeaf struct {
	CatalogEntry catalogEntry `json:"catalogEntry"`
}

type catalogEntry struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Listed  *bool  `json:"listed"` // absent means listed
}

// LatestVersion returns the highest listed version of the named package, or
// nil when the registry knows no matching version. Prerelease versions are
// considered only when includePrerelease is set.
func (c *Client) LatestVersion(ctx context.Context, name string, includePrerelease bool) (*nugetver.Version, error) {
	versions, err := c.Versions(ctx, name, includePrerelease)
	if err != nil {
		return nil, err
	}
	return nugetver.Max(versions), nil
}

// Versions returns every listed version of the named package. Unknown
// packages yield an empty slice and no error.
func (c *Client) Versions(ctx context.Context, name string, includePrerelease bool) ([]*nugetver.Version, error) {
	base, err := c.registrationBaseURL(ctx)
	if err != nil {
		return nil, err
	}

	indexURL := strings.TrimRight(base, "/") + "/" + url.PathEscape(strings.ToLower(name)) + "/index.json"

	var idx registrationIndex
	if err := c.http.fetchJSON(ctx, indexURL, &idx); err != nil {
		if errors.Is(err, errNotFound) {
			log.Debug().Str("package", name).Msg("package not in registry")
			return nil, nil
		}
		return nil, fmt.Errorf("fetching registration for %s: %w", name, err)
	}

	var out []*nugetver.Version
	for _, page := range idx.Items {
		leaves := page.Items
		if leaves == nil {
			var p registrationPage
			if err := c.http.fetchJSON(ctx, page.ID, &p); err != nil {
				return nil, fmt.Errorf("fetching registration page for %s: %w", name, err)
			}
			leaves = p.Items
		}

		for _, leaf := range leaves {
			entry := leaf.CatalogEntry
			if entry.Listed != nil && !*entry.Listed {
				continue
			}
			v, err := nugetver.Parse(entry.Version)
			if err != nil {
				log.Debug().Str("package", name).Str("version", entry.Version).Msg("skipping unparseable version")
				continue
			}
			if v.IsPrerelease() && !includePrerelease {
				continue
			}
			out = append(out, v)
		}
	}

	return out, nil
}

// registrationBaseURL reads the service index on first use and remembers the
// preferred registration resource for the rest of the run.
func (c *Client) registrationBaseURL(ctx context.Context) (string, error) {
	if c.registrationBase != "" {
		return c.registrationBase, nil
	}

	var idx serviceIndexResponse
	if err := c.http.fetchJSON(ctx, c.serviceIndex, &idx); err != nil {
		if errors.Is(err, errNotFound) {
			return "", fmt.Errorf("reading service index %s: status 404", c.serviceIndex)
		}
		return "", fmt.Errorf("reading service index: %w", err)
	}

	byType := make(map[string]string, len(idx.Resources))
	for _, r := range idx.Resources {
		if _, ok := byType[r.Type]; !ok {
			byType[r.Type] = r.ID
		}
	}
	for _, t := range registrationTypes {
		if id, ok := byType[t]; ok && id != "" {
			log.Debug().Str("type", t).Str("url", id).Msg("registration resource selected")
			c.registrationBase = id
			return id, nil
		}
	}

	return "", zerr.With(ErrNoRegistrationResource, "service_index", c.serviceIndex)
}
