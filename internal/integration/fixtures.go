package integration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HartBrook/shrink/internal/config"
	"github.com/HartBrook/shrink/internal/kind"
	"gopkg.in/yaml.v3"
)

// Fixture represents a test scenario loaded from YAML.
type Fixture struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Kind        kind.Kind         `yaml:"kind"`
	Input       string            `yaml:"input"`
	Config      *ConfigSetup      `yaml:"config"`
	Assertions  FixtureAssertions `yaml:"assertions"`
}

// ConfigSetup defines the shrink config.yaml content for a fixture.
type ConfigSetup struct {
	MaxInputSize config.ByteSize `yaml:"max_input_size"`
	Verify       bool            `yaml:"verify"`
}

// FixtureAssertions defines what to verify.
type FixtureAssertions struct {
	Valid bool `yaml:"valid"`

	// Failure checks, used when Valid is false.
	Code   string `yaml:"code"`
	Reason string `yaml:"reason"`
	Offset *int   `yaml:"offset"`

	// Output checks, used when Valid is true.
	Output           *string  `yaml:"output"`
	ReductionPercent *int     `yaml:"reduction_percent"`
	Contains         []string `yaml:"contains"`
	NotContains      []string `yaml:"not_contains"`
}

// LoadFixture loads a fixture from a YAML file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, err
	}

	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}

	return &fixture, nil
}

// Validate checks that the fixture has all required fields.
func (f *Fixture) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if !f.Kind.Valid() {
		return fmt.Errorf("missing required field: kind")
	}
	if f.Assertions.Valid && f.Assertions.Code != "" {
		return fmt.Errorf("assertions.code is only checked when valid is false")
	}
	if !f.Assertions.Valid && f.Assertions.Code == "" {
		return fmt.Errorf("missing required field: assertions.code")
	}
	return nil
}

// LoadAllFixtures loads all fixtures from a directory.
func LoadAllFixtures(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var fixtures []*Fixture
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}

		fixture, err := LoadFixture(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fixture)
	}

	return fixtures, nil
}

// ToConfig converts the fixture config setup to a config.Config.
func (c *ConfigSetup) ToConfig() *config.Config {
	cfg := config.Default()
	if c == nil {
		return cfg
	}
	if c.MaxInputSize > 0 {
		cfg.Limits.MaxInputSize = c.MaxInputSize
	}
	cfg.Verify = c.Verify
	return cfg
}
