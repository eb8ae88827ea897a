// Package config loads stlfaces settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/philipparndt/stlfaces/pkg/loops"
	"github.com/philipparndt/stlfaces/pkg/mesh"
	"github.com/philipparndt/stlfaces/pkg/watcher"
	"gopkg.in/yaml.v3"
)

// Tolerances configures point merging and smoothness
type Tolerances struct {
	Relative float64 `yaml:"relative"` // fraction of the bounding box diagonal
	Minimum  float64 `yaml:"minimum"`  // absolute lower bound for the merge distance
	Smooth   float64 `yaml:"smooth"`   // bending angle in radians below which an edge is smooth
}

// Loops configures outline reconstruction
type Loops struct {
	MaxSteps int  `yaml:"max_steps"`
	Outlines bool `yaml:"outlines"`
}

// Watch configures file watching
type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Config is the complete configuration
type Config struct {
	Tolerances Tolerances `yaml:"tolerances"`
	Loops      Loops      `yaml:"loops"`
	Watch      Watch      `yaml:"watch"`
	LogLevel   string     `yaml:"log_level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Tolerances: Tolerances{
			Relative: mesh.DefaultRelativePrecision,
			Minimum:  mesh.DefaultMinPrecision,
			Smooth:   mesh.DefaultSmoothTolerance,
		},
		Loops: Loops{
			MaxSteps: loops.DefaultMaxSteps,
			Outlines: true,
		},
		Watch: Watch{
			Debounce: watcher.DefaultDebounce,
		},
		LogLevel: "info",
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that all values are usable
func (c *Config) Validate() error {
	var errs []error

	if c.Tolerances.Relative < 0 {
		errs = append(errs, errors.New("tolerances.relative must not be negative"))
	}
	if c.Tolerances.Minimum <= 0 {
		errs = append(errs, errors.New("tolerances.minimum must be positive"))
	}
	if c.Tolerances.Smooth < 0 || c.Tolerances.Smooth > mesh.BoundarySentinel {
		errs = append(errs, errors.New("tolerances.smooth must be between 0 and pi"))
	}
	if c.Loops.MaxSteps <= 0 {
		errs = append(errs, errors.New("loops.max_steps must be positive"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch.debounce must not be negative"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// MeshOptions converts the configuration into importer options
func (c *Config) MeshOptions(logger *slog.Logger) []mesh.Option {
	return []mesh.Option{
		mesh.WithRelativePrecision(c.Tolerances.Relative),
		mesh.WithMinPrecision(c.Tolerances.Minimum),
		mesh.WithSmoothTolerance(c.Tolerances.Smooth),
		mesh.WithOutlines(c.Loops.Outlines),
		mesh.WithMaxLoopSteps(c.Loops.MaxSteps),
		mesh.WithLogger(logger),
	}
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}
