// Package config loads tzresolve settings from an optional TOML file and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ngrash/tzresolve/internal/logging"
	"github.com/ngrash/tzresolve/zonecache"
)

// Config holds the settings shared by the tzresolve commands.
type Config struct {
	// ZoneinfoDirs are searched in order for zone files.
	ZoneinfoDirs []string `toml:"zoneinfo_dirs"`
	// CacheSize bounds the number of parsed zones kept in memory.
	CacheSize int `toml:"cache_size"`
	// DefaultZone is used when no zone is named. If empty, the system
	// default zone is used.
	DefaultZone string         `toml:"default_zone"`
	Log         logging.Config `toml:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ZoneinfoDirs: append([]string(nil), zonecache.DefaultDirs...),
		CacheSize:    zonecache.DefaultSize,
		Log:          logging.DefaultConfig(),
	}
}

// Load returns the default settings, overridden by the TOML file at path
// if path is not empty, and then by the environment.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return Config{}, fmt.Errorf("read config: unknown keys %s", strings.Join(keys, ", "))
		}
	}

	if v := getenv("ZONEINFO"); v != "" {
		cfg.ZoneinfoDirs = filepath.SplitList(v)
	}
	if v := getenv("TZRESOLVE_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TZRESOLVE_CACHE_SIZE: %w", err)
		}
		cfg.CacheSize = n
	}
	cfg.DefaultZone = getEnv(getenv, "TZRESOLVE_DEFAULT_ZONE", cfg.DefaultZone)
	cfg.Log.Level = getEnv(getenv, "TZRESOLVE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv(getenv, "TZRESOLVE_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Output = getEnv(getenv, "TZRESOLVE_LOG_OUTPUT", cfg.Log.Output)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for values no component accepts.
func (c Config) Validate() error {
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	if len(c.ZoneinfoDirs) == 0 {
		return fmt.Errorf("no zoneinfo directories")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// getEnv returns the value of key, or def if it is unset or empty.
func getEnv(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
