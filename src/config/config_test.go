package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/nupdater/src/nuget"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "nupdater.yml", `
registry:
  url: https://nuget.example.com/v3/index.json
  auth_env: FEED_TOKEN
  timeout: 5
update:
  include_prerelease: true
  ignore:
    - "Microsoft.*"
    - "System.Text.Json"
git:
  require_clean: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://nuget.example.com/v3/index.json", cfg.Registry.URL)
	assert.Equal(t, "FEED_TOKEN", cfg.Registry.AuthEnv)
	assert.Equal(t, 5, cfg.Registry.Timeout)
	assert.True(t, cfg.Update.IncludePrerelease)
	assert.Equal(t, []string{"Microsoft.*", "System.Text.Json"}, cfg.Update.Ignore)
	assert.True(t, cfg.Git.RequireClean)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "nupdater.toml", `
[registry]
timeout = 12

[update]
ignore = ["Internal.*"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, nuget.DefaultServiceIndex, cfg.Registry.URL, "unset keys keep defaults")
	assert.Equal(t, 12, cfg.Registry.Timeout)
	assert.Equal(t, []string{"Internal.*"}, cfg.Update.Ignore)
	assert.False(t, cfg.Update.IncludePrerelease)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, nuget.DefaultServiceIndex, cfg.Registry.URL)
	assert.Equal(t, 30, cfg.Registry.Timeout)
	assert.Empty(t, cfg.Source)
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".nupdater.toml", "[git]\nrequire_clean = true\n")
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Git.RequireClean)
	assert.Equal(t, ".nupdater.toml", cfg.Source)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadSyntax(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.yml", "registry: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "parsing")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   string
		wantWarns int
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.Registry.URL = "" },
			wantErr: "registry.url: is required",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *Config) { c.Registry.URL = "ftp://feed/index.json" },
			wantErr: "scheme must be http or https",
		},
		{
			name:      "plain http warns",
			mutate:    func(c *Config) { c.Registry.URL = "http://feed.local/v3/index.json" },
			wantWarns: 1,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Registry.Timeout = -1 },
			wantErr: "registry.timeout",
		},
		{
			name:    "bad ignore pattern",
			mutate:  func(c *Config) { c.Update.Ignore = []string{"Foo.[a"} },
			wantErr: "update.ignore[0]",
		},
		{
			name:      "unset auth env warns",
			mutate:    func(c *Config) { c.Registry.AuthEnv = "NUPDATER_SURELY_UNSET_VAR" },
			wantWarns: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)

			warns, err := Validate(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, ErrInvalidConfig.Error())
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, warns, tt.wantWarns)
		})
	}
}
