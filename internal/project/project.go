// Package project reads the per-project typeset.yaml configuration.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/typeset/internal/config"
)

// Config is the top-level typeset.yaml configuration.
type Config struct {
	// Root is the entry document file, relative to the project directory.
	// Defaults to "main.tys".
	Root string `yaml:"root"`

	// CacheDir holds the persistent artifact store. Relative paths are
	// resolved against the project directory. Defaults to ".typeset".
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Cache toggles the persistent artifact store. Defaults to true.
	Cache *bool `yaml:"cache,omitempty"`

	// MaxIterations overrides the convergence iteration cap. Defaults to
	// the built-in limit; raising it helps documents with long reference
	// chains at the cost of slower failure on genuinely unstable ones.
	MaxIterations int `yaml:"max_iterations,omitempty"`
}

// Default returns the configuration used when no typeset.yaml exists.
func Default() *Config {
	on := true
	return &Config{
		Root:          "main" + config.SourceFileExt,
		CacheDir:      ".typeset",
		Cache:         &on,
		MaxIterations: config.MaxIterations,
	}
}

// Load reads dir/typeset.yaml, filling in defaults. A missing file is
// not an error; the defaults apply.
func Load(dir string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dir, config.ProjectFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.ProjectFileName, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.ProjectFileName, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative")
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = config.MaxIterations
	}
	if c.CacheDir == "" {
		c.CacheDir = ".typeset"
	}
	if c.Cache == nil {
		on := true
		c.Cache = &on
	}
	return nil
}

// CacheEnabled reports whether the artifact store should be used.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}
