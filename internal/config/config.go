package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codeveil/codeveil/internal/naming"
)

// DefaultConfigName is looked up in the project root when no --config flag
// is given.
const DefaultConfigName = ".codeveil.yaml"

// Config represents the .codeveil.yaml configuration.
type Config struct {
	Root      string          `yaml:"root"`
	Include   []string        `yaml:"include"`
	Exclude   []string        `yaml:"exclude"`
	Output    OutputConfig    `yaml:"output"`
	Naming    naming.Config   `yaml:"naming"`
	Whitelist WhitelistConfig `yaml:"whitelist"`
	Cache     CacheConfig     `yaml:"cache"`
}

// OutputConfig controls where transformed files and the mapping export go.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	MappingFormat string `yaml:"mapping_format"` // json (default) or csv
}

// WhitelistConfig lists project names and prefixes that must never be renamed.
type WhitelistConfig struct {
	Names    []string `yaml:"names"`
	Prefixes []string `yaml:"prefixes"`
}

// CacheConfig controls the incremental build cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Root: ".",
		Include: []string{
			"**/*.h", "**/*.m", "**/*.mm", "**/*.swift",
		},
		Exclude: []string{
			"Pods/**",
			"Carthage/**",
			"DerivedData/**",
			".git/**",
			"**/*.generated.swift",
			".codeveil/**",
		},
		Output: OutputConfig{
			Dir:           ".codeveil",
			MappingFormat: "json",
		},
		Naming: naming.DefaultConfig(),
		Cache:  CacheConfig{Enabled: true},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = ".codeveil"
	}
	if cfg.Output.MappingFormat == "" {
		cfg.Output.MappingFormat = "json"
	}
	return cfg, nil
}

// Validate rejects invalid configuration before any file is touched.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if err := c.Naming.Validate(); err != nil {
		return err
	}
	switch c.Output.MappingFormat {
	case "json", "csv":
	default:
		return fmt.Errorf("invalid mapping format %q", c.Output.MappingFormat)
	}
	return nil
}
