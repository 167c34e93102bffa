package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sofmeright/nupdater/src/nuget"
)

// defaultConfigFiles are tried in order when no config path is given.
var defaultConfigFiles = []string{".nupdater.yml", ".nupdater.yaml", ".nupdater.toml"}

// Config is the top-level nupdater configuration.
type Config struct {
	Registry RegistryConfig `yaml:"registry" toml:"registry"`
	Update   UpdateConfig   `yaml:"update" toml:"update"`
	Git      GitConfig      `yaml:"git" toml:"git"`

	// Source is the file the config was read from; empty for defaults.
	Source string `yaml:"-" toml:"-"`
}

// RegistryConfig points at the NuGet v3 feed to query.
//
// .nupdater.yml example:
//
//	registry:
//	  url: "https://nuget.company.com/v3/index.json"
//	  auth_env: "NUGET_TOKEN"
//	  timeout: 30
type RegistryConfig struct {
	URL     string `yaml:"url" toml:"url"`           // v3 service index URL
	AuthEnv string `yaml:"auth_env" toml:"auth_env"` // env var name holding a Bearer token
	Timeout int    `yaml:"timeout" toml:"timeout"`   // HTTP timeout in seconds
}

// UpdateConfig controls which declarations are updated.
type UpdateConfig struct {
	IncludePrerelease bool     `yaml:"include_prerelease" toml:"include_prerelease"`
	Ignore            []string `yaml:"ignore" toml:"ignore"` // package name globs
}

// GitConfig holds safety checks against the enclosing git worktree.
type GitConfig struct {
	RequireClean bool `yaml:"require_clean" toml:"require_clean"` // refuse to edit a manifest with uncommitted changes
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// If path is empty, it tries the default files in the working directory.
// Returns sensible defaults if no default file exists.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, name := range defaultConfigFiles {
			cfg, err := loadFile(name)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return cfg, err
		}
		return defaults(), nil
	}
	return loadFile(path)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Registry: RegistryConfig{
			URL:     nuget.DefaultServiceIndex,
			Timeout: 30,
		},
	}
}
