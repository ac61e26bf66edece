package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/tagspan/pkg/tagspan/batch"
	"github.com/cognicore/tagspan/pkg/tagspan/internalerr"
	"github.com/cognicore/tagspan/pkg/tagspan/token"
)

// Config is the full run configuration
type Config struct {
	Output     Output     `yaml:"output"`
	Annotation Annotation `yaml:"annotation"`
	Store      Store      `yaml:"store"`
	Log        Log        `yaml:"log"`
	Metrics    Metrics    `yaml:"metrics"`
}

// Output controls the batched file writer
type Output struct {
	Dir              string `yaml:"dir"`
	Prefix           string `yaml:"prefix"`
	DocumentsPerFile int    `yaml:"documents_per_file"`
	PadWidth         int    `yaml:"pad_width"`
	ResumeBatch      int    `yaml:"resume_batch"`
}

// Annotation controls span aggregation and the annotation sink
type Annotation struct {
	Source       string `yaml:"source"`
	OutsideLabel string `yaml:"outside_label"`
	Kinds        []Kind `yaml:"kinds"`
}

// Kind is an entity type registered in addition to the defaults
type Kind struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// Store selects optional annotation persistence
type Store struct {
	// Path of a SQLite database; empty disables persistence
	Path string `yaml:"path"`
}

// Log configures the logger
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Metrics configures the prometheus endpoint
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Output: Output{
			Dir:              "out",
			Prefix:           batch.DefaultPrefix,
			DocumentsPerFile: batch.DefaultDocumentsPerFile,
			PadWidth:         batch.DefaultPadWidth,
		},
		Annotation: Annotation{
			Source:       "tagspan",
			OutsideLabel: token.Outside,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir is required: %w", internalerr.ErrInvalidConfig)
	}
	if c.Output.DocumentsPerFile <= 0 {
		return fmt.Errorf("output.documents_per_file must be positive, got %d: %w",
			c.Output.DocumentsPerFile, internalerr.ErrInvalidConfig)
	}
	if c.Output.PadWidth <= 0 {
		return fmt.Errorf("output.pad_width must be positive, got %d: %w",
			c.Output.PadWidth, internalerr.ErrInvalidConfig)
	}
	if c.Output.ResumeBatch < 0 {
		return fmt.Errorf("output.resume_batch must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Output.Prefix, `/\`) {
		return fmt.Errorf("output.prefix %q must not contain path separators: %w",
			c.Output.Prefix, internalerr.ErrInvalidConfig)
	}
	if c.Annotation.OutsideLabel == "" {
		return fmt.Errorf("annotation.outside_label is required: %w", internalerr.ErrInvalidConfig)
	}
	for i, k := range c.Annotation.Kinds {
		if strings.TrimSpace(k.Name) == "" {
			return fmt.Errorf("annotation.kinds[%d] has no name: %w", i, internalerr.ErrInvalidConfig)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: %w", c.Log.Level, internalerr.ErrInvalidConfig)
	}
	return nil
}
