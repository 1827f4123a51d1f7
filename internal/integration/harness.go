// Package integration provides integration testing utilities for shrink.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HartBrook/shrink/internal/batch"
	"github.com/HartBrook/shrink/internal/cache"
	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/engine"
	"github.com/HartBrook/shrink/internal/kind"
)

// TestEnv provides an isolated test environment with overridden paths.
type TestEnv struct {
	t         *testing.T
	RootDir   string        // t.TempDir() root
	HomeDir   string        // Simulated $HOME
	ConfigDir string        // ~/.config/shrink
	CacheDir  string        // ~/.cache/shrink
	InputDir  string        // Where input files are written
	Paths     *config.Paths // Configured paths pointing to temp dirs
}

// NewTestEnv creates an isolated test environment.
// All paths are configured to use temporary directories.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	rootDir := t.TempDir()
	homeDir := filepath.Join(rootDir, "home")
	configDir := filepath.Join(homeDir, ".config", "shrink")
	cacheDir := filepath.Join(homeDir, ".cache", "shrink")
	inputDir := filepath.Join(rootDir, "inputs")

	for _, dir := range []string{configDir, cacheDir, inputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	return &TestEnv{
		t:         t,
		RootDir:   rootDir,
		HomeDir:   homeDir,
		ConfigDir: configDir,
		CacheDir:  cacheDir,
		InputDir:  inputDir,
		Paths:     config.NewPathsWithOverrides(configDir, cacheDir),
	}
}

// SetupConfig writes config.yaml.
func (e *TestEnv) SetupConfig(cfg *config.Config) error {
	return config.SaveTo(cfg, e.Paths.ConfigFile)
}

// LoadConfig reads config.yaml back the way the CLI does.
func (e *TestEnv) LoadConfig() (*config.Config, error) {
	return config.LoadOrDefault(e.Paths.ConfigFile)
}

// WriteInput writes an input file named for its kind and returns its path.
func (e *TestEnv) WriteInput(name string, k kind.Kind, content string) (string, error) {
	path := filepath.Join(e.InputDir, name+k.Suffixes()[0])
	return path, os.WriteFile(path, []byte(content), 0644)
}

// Engine builds an engine from cfg.
func (e *TestEnv) Engine(cfg *config.Config) *engine.Engine {
	return engine.New(
		engine.WithMaxInputBytes(cfg.Limits.MaxInputSize.Bytes()),
		engine.WithVerify(cfg.Verify),
	)
}

// Cache returns the result cache under the environment's cache dir.
func (e *TestEnv) Cache() *cache.Cache {
	return cache.New(e.Paths)
}

// Outcome is everything a fixture run produced.
type Outcome struct {
	Validation engine.ValidationResult
	Result     batch.Result
	// Rerun is the same input processed again with a warm cache.
	Rerun batch.Result
}

// RunFixture writes the fixture's config and input, then validates and
// minifies the input through the batch runner twice, the second time
// expecting a cache hit.
func (e *TestEnv) RunFixture(f *Fixture) (*Outcome, error) {
	if err := e.SetupConfig(f.Config.ToConfig()); err != nil {
		return nil, err
	}
	cfg, err := e.LoadConfig()
	if err != nil {
		return nil, err
	}

	path, err := e.WriteInput(f.Name, f.Kind, f.Input)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	eng := e.Engine(cfg)
	in := []batch.Input{{Name: path, Kind: f.Kind, Text: string(data)}}
	runner := batch.New(eng, batch.Options{
		Cache:    e.Cache(),
		CacheTTL: time.Hour,
	})

	out := &Outcome{Validation: eng.Validate(string(data), f.Kind)}
	out.Result = runner.Run(context.Background(), in)[0]
	out.Rerun = runner.Run(context.Background(), in)[0]
	return out, nil
}
