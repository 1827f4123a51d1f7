package config

import (
	"os"
	"path/filepath"
)

// Paths provides all shrink-related filesystem paths.
type Paths struct {
	ConfigDir  string // ~/.config/shrink
	CacheDir   string // ~/.cache/shrink
	ConfigFile string // ~/.config/shrink/config.yaml
}

// NewPaths creates Paths using ~/.config and ~/.cache directories.
// We use these paths explicitly for cross-platform consistency rather than
// platform-specific defaults (like ~/Library/Application Support on macOS).
func NewPaths() *Paths {
	home := os.Getenv("HOME")
	return NewPathsWithOverrides(
		filepath.Join(home, ".config", "shrink"),
		filepath.Join(home, ".cache", "shrink"),
	)
}

// NewPathsWithOverrides allows overriding directories for testing.
func NewPathsWithOverrides(configDir, cacheDir string) *Paths {
	return &Paths{
		ConfigDir:  configDir,
		CacheDir:   cacheDir,
		ConfigFile: filepath.Join(configDir, "config.yaml"),
	}
}

// ResultsDir returns the directory holding cached minification results.
func (p *Paths) ResultsDir() string {
	return filepath.Join(p.CacheDir, "results")
}

// ResultFile returns the path of the cached output for key.
func (p *Paths) ResultFile(key string) string {
	return filepath.Join(p.ResultsDir(), key+".out")
}

// ResultMetaFile returns the path for the cache metadata sidecar of key.
func (p *Paths) ResultMetaFile(key string) string {
	return filepath.Join(p.ResultsDir(), key+".meta.json")
}
