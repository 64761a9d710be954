package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "exopanel/internal/errors"
)

// dateLayout is the format of every date field in the configuration file.
const dateLayout = "2006-01-02"

// Config is the complete, validated run configuration. It is assembled
// once at startup and never mutated afterwards; every field is checked at
// construction so a malformed key fails the run immediately instead of
// surfacing as a nil access later.
type Config struct {
	Dates    DatesConfig    `yaml:"dates" envconfig:"DATES"`
	Universe UniverseConfig `yaml:"universe" envconfig:"UNIVERSE"`
	Events   EventsConfig   `yaml:"events" envconfig:"EVENTS"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// DatesConfig carries the inclusive project date bounds as written in the
// file; StartDate()/EndDate() expose the parsed values.
type DatesConfig struct {
	Start string `yaml:"start" envconfig:"START" validate:"required"`
	End   string `yaml:"end" envconfig:"END" validate:"required"`

	start time.Time
	end   time.Time
}

// StartDate returns the inclusive project start date.
func (d DatesConfig) StartDate() time.Time { return d.start }

// EndDate returns the inclusive project end date.
func (d DatesConfig) EndDate() time.Time { return d.end }

// Asset identifies one equity of the universe.
type Asset struct {
	Symbol string `yaml:"symbol" envconfig:"SYMBOL" validate:"required"`
	Name   string `yaml:"name" envconfig:"NAME"`
}

// UniverseConfig lists the symbols whose panels are built.
type UniverseConfig struct {
	Targets []Asset `yaml:"targets" validate:"required,min=1,dive"`
}

// Symbols returns the target symbols in configuration order.
func (u UniverseConfig) Symbols() []string {
	symbols := make([]string, len(u.Targets))
	for i, a := range u.Targets {
		symbols[i] = a.Symbol
	}
	return symbols
}

// EventsConfig points at the event definition file.
type EventsConfig struct {
	File string `yaml:"file" envconfig:"FILE" validate:"required"`
}

// PathsConfig contains the cache hierarchy the run reads from and writes
// to. All output stays under CacheDir.
type PathsConfig struct {
	CacheDir     string `yaml:"cache_dir" envconfig:"CACHE_DIR" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" validate:"required"`
	MacroDir     string `yaml:"macro_dir" envconfig:"MACRO_DIR" validate:"required"`
	ExoDir       string `yaml:"exo_dir" envconfig:"EXO_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// PricePath returns the cleaned price CSV path for a symbol.
func (p PathsConfig) PricePath(symbol string) string {
	return filepath.Join(p.ProcessedDir, symbol+"_enriched.csv")
}

// PanelPath returns the output CSV path for a symbol's panel.
func (p PathsConfig) PanelPath(symbol string) string {
	return filepath.Join(p.ExoDir, symbol+".csv")
}

// LineagePath returns the JSONL audit log path.
func (p PathsConfig) LineagePath() string {
	return filepath.Join(p.LogsDir, "data_lineage.jsonl")
}

// IntegrityPath returns the per-run input integrity summary path.
func (p PathsConfig) IntegrityPath() string {
	return filepath.Join(p.LogsDir, "integrity_report.csv")
}

// LoggingConfig holds the application logging knobs: JSON records,
// configurable level; output to stdout, file or both.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load reads the YAML configuration at path, applies EXO_* environment
// overrides, validates every field and creates the cache directories.
// Fatal conditions: unreadable or malformed file, missing required keys,
// unparseable dates, start after end.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewMissingSource("load_config", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment overrides take precedence over the file.
	if err := envconfig.Process("EXO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := cfg.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create cache directories: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills fields left empty by both the file and the
// environment. Defaults live only here; a default tag on the envconfig
// side would overwrite file-loaded values whenever the variable is
// unset.
func applyDefaults(cfg *Config) {
	if cfg.Paths.CacheDir == "" {
		cfg.Paths.CacheDir = ".cache"
	}
	if cfg.Paths.ProcessedDir == "" {
		cfg.Paths.ProcessedDir = filepath.Join(cfg.Paths.CacheDir, "processed")
	}
	if cfg.Paths.MacroDir == "" {
		cfg.Paths.MacroDir = filepath.Join(cfg.Paths.CacheDir, "macro")
	}
	if cfg.Paths.ExoDir == "" {
		cfg.Paths.ExoDir = filepath.Join(cfg.Paths.CacheDir, "exogenous")
	}
	if cfg.Paths.LogsDir == "" {
		cfg.Paths.LogsDir = "logs"
	}
	if cfg.Events.File == "" {
		cfg.Events.File = "config/exogenous_events.yml"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "both"
	}
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(cfg.Paths.LogsDir, "app.log")
	}
}

// validate checks structural constraints and parses the date bounds.
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	start, err := time.Parse(dateLayout, c.Dates.Start)
	if err != nil {
		return fmt.Errorf("invalid dates.start %q: %w", c.Dates.Start, err)
	}
	end, err := time.Parse(dateLayout, c.Dates.End)
	if err != nil {
		return fmt.Errorf("invalid dates.end %q: %w", c.Dates.End, err)
	}
	if start.After(end) {
		return apperrors.NewInvalidRange("load_config", start, end)
	}
	c.Dates.start = start
	c.Dates.end = end

	return nil
}

// ensureDirectories creates the cache hierarchy, idempotently.
func (c *Config) ensureDirectories() error {
	dirs := []string{
		c.Paths.CacheDir,
		c.Paths.ProcessedDir,
		c.Paths.MacroDir,
		c.Paths.ExoDir,
		c.Paths.LogsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}
