// Package config loads run settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/srodi/freezer/pkg/types"
)

var (
	// ErrInvalidTarget is returned when the target free percentage is outside (0, 100].
	ErrInvalidTarget = errors.New("target free percent must be in (0, 100]")
	// ErrInvalidTop is returned for a negative report row limit.
	ErrInvalidTop = errors.New("top must not be negative")
)

// Config holds everything a single run needs.
type Config struct {
	TargetFreePercent float64 `yaml:"target_free_percent"`
	ProcRoot          string  `yaml:"proc_root"`
	DryRun            bool    `yaml:"dry_run"`
	Report            bool    `yaml:"report"`
	Top               int     `yaml:"top"`
	MetricsTextfile   string  `yaml:"metrics_textfile"`
	LogLevel          string  `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TargetFreePercent: types.DefaultTargetFreePercent,
		ProcRoot:          types.DefaultProcRoot,
	}
}

// Load reads a YAML file on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and normalizes fields.
func (c *Config) Validate() error {
	if c.TargetFreePercent <= 0 || c.TargetFreePercent > 100 {
		return fmt.Errorf("%w: got %g", ErrInvalidTarget, c.TargetFreePercent)
	}
	if c.Top < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTop, c.Top)
	}
	c.ProcRoot = strings.TrimSpace(c.ProcRoot)
	if c.ProcRoot == "" {
		c.ProcRoot = types.DefaultProcRoot
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.MetricsTextfile = strings.TrimSpace(c.MetricsTextfile)
	return nil
}
