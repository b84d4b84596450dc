package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngrash/tzresolve/internal/logging"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tzresolve.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Contains(t, cfg.ZoneinfoDirs, "/usr/share/zoneinfo")
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
zoneinfo_dirs = ["/opt/zoneinfo"]
cache_size = 16
default_zone = "Europe/Berlin"

[log]
level = "debug"
format = "json"
`)
	cfg, err := load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, Config{
		ZoneinfoDirs: []string{"/opt/zoneinfo"},
		CacheSize:    16,
		DefaultZone:  "Europe/Berlin",
		Log:          logging.Config{Level: "debug", Format: "json", Output: "stderr"},
	}, cfg)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
cache_size = 16
[log]
level = "debug"
`)
	cfg, err := load(path, env(map[string]string{
		"ZONEINFO":               "/a" + string(filepath.ListSeparator) + "/b",
		"TZRESOLVE_CACHE_SIZE":   "64",
		"TZRESOLVE_DEFAULT_ZONE": "Asia/Tokyo",
		"TZRESOLVE_LOG_LEVEL":    "error",
		"TZRESOLVE_LOG_FORMAT":   "json",
		"TZRESOLVE_LOG_OUTPUT":   "stdout",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.ZoneinfoDirs)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.Equal(t, "Asia/Tokyo", cfg.DefaultZone)
	assert.Equal(t, logging.Config{Level: "error", Format: "json", Output: "stdout"}, cfg.Log)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing file", file: "-", wantErr: "read config"},
		{name: "bad toml", file: "cache_size = ", wantErr: "read config"},
		{name: "unknown key", file: "cache = 3\n[log]\nlevl = \"x\"", wantErr: "unknown keys cache, log.levl"},
		{name: "cache size", file: "cache_size = 0", wantErr: "cache size must be positive"},
		{name: "cache size env", env: map[string]string{"TZRESOLVE_CACHE_SIZE": "many"}, wantErr: "invalid TZRESOLVE_CACHE_SIZE"},
		{name: "log level", env: map[string]string{"TZRESOLVE_LOG_LEVEL": "chatty"}, wantErr: "unknown log level"},
		{name: "no directories", file: "zoneinfo_dirs = []", wantErr: "no zoneinfo directories"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			switch tt.file {
			case "":
			case "-":
				path = filepath.Join(t.TempDir(), "missing.toml")
			default:
				path = writeConfig(t, tt.file)
			}
			_, err := load(path, env(tt.env))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
