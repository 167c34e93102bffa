package config

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"go.trai.ch/zerr"
)

// ErrInvalidConfig is returned by Validate when any hard check fails.
var ErrInvalidConfig = zerr.New("invalid configuration")

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Registry ──────────────────────────────────────────────────────────

	if cfg.Registry.URL == "" {
		errs = append(errs, "registry.url: is required")
	} else if u, perr := url.Parse(cfg.Registry.URL); perr != nil {
		errs = append(errs, fmt.Sprintf("registry.url: %v", perr))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("registry.url: scheme must be http or https, got %q", u.Scheme))
	} else if u.Scheme == "http" {
		warnings = append(warnings, fmt.Sprintf("registry.url: %s is not using TLS", cfg.Registry.URL))
	}

	if cfg.Registry.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("registry.timeout: must be >= 0, got %d", cfg.Registry.Timeout))
	}

	if env := cfg.Registry.AuthEnv; env != "" && os.Getenv(env) == "" {
		warnings = append(warnings, fmt.Sprintf("registry.auth_env: %s is not set; requests are sent unauthenticated", env))
	}

	// ── Update ────────────────────────────────────────────────────────────

	for i, pattern := range cfg.Update.Ignore {
		if _, merr := path.Match(pattern, ""); merr != nil {
			errs = append(errs, fmt.Sprintf("update.ignore[%d]: bad pattern %q", i, pattern))
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(errs, "\n  "))
	}
	return warnings, nil
}
