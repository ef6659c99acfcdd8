package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds paths, format options and render settings shared by the
// command-line tools.
type Config struct {
	// Paths
	OutputDir   string   `json:"output_dir" yaml:"output_dir"`
	TextureDirs []string `json:"texture_dirs" yaml:"texture_dirs"`

	// Format
	FormatVersion      int    `json:"format_version" yaml:"format_version"`
	StrictVersion      bool   `json:"strict_version" yaml:"strict_version"`
	MaterialResolution string `json:"material_resolution" yaml:"material_resolution"`

	// Render settings
	PreviewSize   int     `json:"preview_size" yaml:"preview_size"`
	Supersample   int     `json:"supersample" yaml:"supersample"`
	ThumbnailSize int     `json:"thumbnail_size" yaml:"thumbnail_size"`
	FillRatio     float64 `json:"fill_ratio" yaml:"fill_ratio"`
	SpeckRatio    float64 `json:"speck_ratio" yaml:"speck_ratio"` // negative disables
	Yaw           float64 `json:"yaw" yaml:"yaw"`
	Pitch         float64 `json:"pitch" yaml:"pitch"`
	Workers       int     `json:"workers" yaml:"workers"`

	// directory of the loaded file; relative paths resolve against it
	baseDir string
}

// Load reads a JSON or, for .yaml/.yml files, YAML config file.
// Fields not set in the file keep their zero values until Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.baseDir = filepath.Dir(path)
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	Size       int
	Workers    int
	Resolution string
}

// Resolve applies CLI overrides, then fills in defaults. Relative paths
// from a config file are taken relative to that file.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	} else if c.OutputDir != "" && c.baseDir != "" && !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.baseDir, c.OutputDir)
	}
	if flags.Size > 0 {
		c.PreviewSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Resolution != "" {
		c.MaterialResolution = flags.Resolution
	}

	for i, d := range c.TextureDirs {
		if c.baseDir != "" && !filepath.IsAbs(d) {
			c.TextureDirs[i] = filepath.Join(c.baseDir, d)
		}
	}

	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.FormatVersion <= 0 {
		c.FormatVersion = 91
	}
	if c.MaterialResolution == "" {
		c.MaterialResolution = "positional"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = 64
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		c.FillRatio = 0.9
	}
	if c.SpeckRatio == 0 {
		c.SpeckRatio = 0.02
	}
	if c.Yaw == 0 && c.Pitch == 0 {
		c.Yaw, c.Pitch = 35, 20
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	if c.FormatVersion < 0 || c.FormatVersion > math.MaxUint16 {
		return fmt.Errorf("config: format_version %d does not fit in 16 bits", c.FormatVersion)
	}
	switch c.MaterialResolution {
	case "positional", "name":
	default:
		return fmt.Errorf("config: material_resolution %q, want positional or name", c.MaterialResolution)
	}
	return nil
}
