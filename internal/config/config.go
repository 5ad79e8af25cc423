// Package config loads .schematic.toml and merges it with command-line
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the config file searched for from the working directory up.
const FileName = ".schematic.toml"

// Config holds analyzer settings.
type Config struct {
	Gear       string `toml:"gear"`        // single character treated as a gear
	Index      string `toml:"index"`       // memory | sqlite
	Format     string `toml:"format"`      // json | text
	Verbose    bool   `toml:"verbose"`     // debug logging
	ScriptsDir string `toml:"scripts_dir"` // load report scripts from disk instead of embedded
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Gear:   "*",
		Index:  "memory",
		Format: "json",
	}
}

// Find walks up from startDir looking for FileName. It reports false when no
// file exists in any ancestor.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes path over the defaults and validates the result. Keys absent
// from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the config file at explicit, or the nearest FileName above
// startDir when explicit is empty. With no file, the defaults are returned.
func Resolve(explicit, startDir string) (Config, string, error) {
	path := explicit
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Config{}, "", err
		}
		if !ok {
			return Default(), "", nil
		}
		path = found
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if len(c.Gear) != 1 {
		return fmt.Errorf("gear must be a single character, got %q", c.Gear)
	}
	if c.Gear == "." || (c.Gear[0] >= '0' && c.Gear[0] <= '9') {
		return fmt.Errorf("gear %q can never be a symbol", c.Gear)
	}
	switch c.Index {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("index must be memory or sqlite, got %q", c.Index)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("format must be json or text, got %q", c.Format)
	}
	return nil
}

// GearByte returns the gear character. Validate must have passed.
func (c Config) GearByte() byte { return c.Gear[0] }
