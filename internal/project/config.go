// Package project locates and parses goat.toml, the per-project manifest
// holding the pipeline's tunables.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the project root is identified by.
const ManifestName = "goat.toml"

// UnobservedPolicy says what happens when a fire-and-forget launch discards
// a fallible function's error. The language proposal leaves this open, so it
// is configuration rather than a hardcoded answer.
type UnobservedPolicy string

const (
	// UnobservedIgnore drops the error silently.
	UnobservedIgnore UnobservedPolicy = "ignore"
	// UnobservedReport turns the discard into a diagnostic.
	UnobservedReport UnobservedPolicy = "report"
)

// Config is the parsed manifest plus defaults for anything unspecified.
type Config struct {
	Package PackageConfig `toml:"package"`
	Check   CheckConfig   `toml:"check"`
}

// PackageConfig names the project.
type PackageConfig struct {
	Name string `toml:"name"`
}

// CheckConfig holds the pipeline tunables.
type CheckConfig struct {
	// Jobs caps the parallel per-file workers; 0 means one per CPU.
	Jobs int `toml:"jobs"`
	// MaxDiagnostics truncates the report; 0 means unlimited.
	MaxDiagnostics int `toml:"max_diagnostics"`
	// UnobservedErrors is the launch observation policy.
	UnobservedErrors UnobservedPolicy `toml:"unobserved_errors"`
	// CacheDir is where per-file analysis results are cached. Relative paths
	// are resolved against the project root. Empty disables the cache.
	CacheDir string `toml:"cache_dir"`
}

// Default is the configuration of a project with no manifest.
func Default() Config {
	return Config{
		Check: CheckConfig{
			UnobservedErrors: UnobservedIgnore,
		},
	}
}

// ErrBadPolicy indicates an unknown unobserved_errors value.
var ErrBadPolicy = errors.New(`check.unobserved_errors must be "ignore" or "report"`)

// Load parses the manifest at path.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Check.UnobservedErrors {
	case UnobservedIgnore, UnobservedReport:
	default:
		return fmt.Errorf("%w, got %q", ErrBadPolicy, c.Check.UnobservedErrors)
	}
	if c.Check.Jobs < 0 {
		return fmt.Errorf("check.jobs must be non-negative, got %d", c.Check.Jobs)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("check.max_diagnostics must be non-negative, got %d", c.Check.MaxDiagnostics)
	}
	return nil
}

// FindManifest walks up from startDir looking for goat.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadFromDir finds and parses the manifest governing startDir, falling back
// to defaults when no manifest exists. The returned root is the manifest's
// directory, or startDir without one.
func LoadFromDir(startDir string) (Config, string, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return Config{}, "", err
		}
		return Default(), abs, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, filepath.Dir(path), nil
}

// ResolveCacheDir turns the configured cache directory into an absolute
// path under root. Empty stays empty (cache disabled).
func (c Config) ResolveCacheDir(root string) string {
	dir := strings.TrimSpace(c.Check.CacheDir)
	if dir == "" {
		return ""
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}
