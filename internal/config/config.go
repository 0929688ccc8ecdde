package config

import (
	"fmt"
	"path"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/andywolf/loctreemap/internal/layout"
	"github.com/andywolf/loctreemap/internal/render"
)

// FileName is the config file looked up in the working directory.
const FileName = ".loctreemap.yaml"

// EnvPrefix prefixes environment overrides, e.g. LOCTREEMAP_SCAN_ENTIRE_REPO.
const EnvPrefix = "LOCTREEMAP"

// Config represents the full loctreemap configuration
type Config struct {
	Scan      ScanConfig      `mapstructure:"scan" yaml:"scan"`
	Languages map[string]bool `mapstructure:"languages" yaml:"languages,omitempty"`
	Registry  string          `mapstructure:"registry" yaml:"registry,omitempty"`
	Colors    []string        `mapstructure:"colors" yaml:"colors"`
	Canvas    CanvasConfig    `mapstructure:"canvas" yaml:"canvas"`
	Layout    LayoutConfig    `mapstructure:"layout" yaml:"layout"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// ScanConfig controls directory traversal
type ScanConfig struct {
	Root             string   `mapstructure:"root" yaml:"root,omitempty"`
	EntireRepo       bool     `mapstructure:"entire_repo" yaml:"entire_repo"`
	IgnoreDotFolders bool     `mapstructure:"ignore_dot_folders" yaml:"ignore_dot_folders"`
	Exclude          []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	Workers          int      `mapstructure:"workers" yaml:"workers,omitempty"`
}

// CanvasConfig is the layout canvas size in pixels
type CanvasConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// LayoutConfig selects the treemap algorithm
type LayoutConfig struct {
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`
}

// OutputConfig contains output locations. A relative Path is resolved
// against the scan root.
type OutputConfig struct {
	Path      string `mapstructure:"path" yaml:"path"`
	EventsDir string `mapstructure:"events_dir" yaml:"events_dir,omitempty"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	GCPProject string `mapstructure:"gcp_project" yaml:"gcp_project,omitempty"`
	LogID      string `mapstructure:"log_id" yaml:"log_id,omitempty"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose,omitempty"`
}

const (
	defaultWidth  = 1200
	defaultHeight = 800
	defaultLogID  = "loctreemap"
)

// DefaultOutputPath is where the document is written relative to the root.
var DefaultOutputPath = path.Join(render.OutputDir, render.HTMLFile)

// SetDefaults registers default values on v. Booleans that default to true
// must be set here since an unmarshalled false is indistinguishable from unset.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scan.entire_repo", false)
	v.SetDefault("scan.ignore_dot_folders", true)
	v.SetDefault("canvas.width", defaultWidth)
	v.SetDefault("canvas.height", defaultHeight)
	v.SetDefault("layout.algorithm", string(layout.Squarified))
	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("logging.log_id", defaultLogID)
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	cfg := &Config{Scan: ScanConfig{IgnoreDotFolders: true}}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration from the given viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Scan.Root == "" {
		cfg.Scan.Root = "."
	}

	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}

	if len(cfg.Colors) == 0 {
		cfg.Colors = append([]string(nil), layout.DefaultColors...)
	}

	if cfg.Canvas.Width == 0 {
		cfg.Canvas.Width = defaultWidth
	}

	if cfg.Canvas.Height == 0 {
		cfg.Canvas.Height = defaultHeight
	}

	if cfg.Layout.Algorithm == "" {
		cfg.Layout.Algorithm = string(layout.Squarified)
	}

	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}

	if cfg.Logging.LogID == "" {
		cfg.Logging.LogID = defaultLogID
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return fmt.Errorf("invalid scan.workers: %d (must not be negative)", c.Scan.Workers)
	}

	for _, pattern := range c.Scan.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("invalid canvas size %gx%g (must be positive)", c.Canvas.Width, c.Canvas.Height)
	}

	if _, err := layout.ParseAlgorithm(c.Layout.Algorithm); err != nil {
		return err
	}

	if _, err := layout.NewPalette(c.Colors); err != nil {
		return fmt.Errorf("invalid colors: %w", err)
	}

	if c.Output.Path == "" {
		return fmt.Errorf("output path is required")
	}

	return nil
}

// Palette returns the configured palette.
func (c *Config) Palette() (*layout.Palette, error) {
	return layout.NewPalette(c.Colors)
}

// Algorithm returns the configured layout algorithm.
func (c *Config) Algorithm() (layout.Algorithm, error) {
	return layout.ParseAlgorithm(c.Layout.Algorithm)
}

// ResolvePath resolves p against root unless p is absolute. An empty p
// stays empty.
func ResolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// OutputFile returns the HTML document path.
func (c *Config) OutputFile() string {
	return ResolvePath(c.Scan.Root, c.Output.Path)
}

// EventsDir returns the events directory, empty when events are disabled.
func (c *Config) EventsDir() string {
	return ResolvePath(c.Scan.Root, c.Output.EventsDir)
}
