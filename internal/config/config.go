// Package config loads modcompat settings from .modcompat/config.json with
// MODCOMPAT_* environment overrides.
package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/modversion"
	"modcompat/internal/slogutil"
)

// CurrentVersion is the config schema version.
const CurrentVersion = 1

// Dir is the per-project directory holding config and history.
const Dir = ".modcompat"

// Config is the complete modcompat configuration.
type Config struct {
	Version  int            `json:"version" mapstructure:"version"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
	Registry RegistryConfig `json:"registry" mapstructure:"registry"`
	Compare  CompareConfig  `json:"compare" mapstructure:"compare"`
	Report   ReportConfig   `json:"report" mapstructure:"report"`
	Store    StoreConfig    `json:"store" mapstructure:"store"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize,omitempty" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups,omitempty" mapstructure:"maxBackups"`
}

// RegistryConfig sizes the per-snapshot class cache.
type RegistryConfig struct {
	CacheSize int `json:"cacheSize" mapstructure:"cacheSize"`
}

// CompareConfig controls how module pairs are resolved and compared.
type CompareConfig struct {
	AccessOrder     string   `json:"accessOrder" mapstructure:"accessOrder"`
	PlatformPaths   []string `json:"platformPaths" mapstructure:"platformPaths"`
	PlatformModules []string `json:"platformModules" mapstructure:"platformModules"`
	// Parallelism bounds concurrent pair comparisons; zero means one per CPU.
	Parallelism int `json:"parallelism" mapstructure:"parallelism"`
}

// ReportConfig controls output and failure thresholds.
type ReportConfig struct {
	Format       string `json:"format" mapstructure:"format"`
	Suppressions string `json:"suppressions,omitempty" mapstructure:"suppressions"`
	FailOn       string `json:"failOn" mapstructure:"failOn"`
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
		Registry: RegistryConfig{
			CacheSize: 1024,
		},
		Compare: CompareConfig{
			AccessOrder:     "standard",
			PlatformPaths:   []string{filepath.Join(Dir, "platform")},
			PlatformModules: []string{"java.base"},
		},
		Report: ReportConfig{
			Format: "human",
			FailOn: "none",
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    filepath.Join(Dir, "history.db"),
		},
	}
}

// setDefaults registers every key so that environment overrides apply even
// when the file does not mention them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("registry.cacheSize", d.Registry.CacheSize)
	v.SetDefault("compare.accessOrder", d.Compare.AccessOrder)
	v.SetDefault("compare.platformPaths", d.Compare.PlatformPaths)
	v.SetDefault("compare.platformModules", d.Compare.PlatformModules)
	v.SetDefault("compare.parallelism", d.Compare.Parallelism)
	v.SetDefault("report.format", d.Report.Format)
	v.SetDefault("report.suppressions", d.Report.Suppressions)
	v.SetDefault("report.failOn", d.Report.FailOn)
	v.SetDefault("store.enabled", d.Store.Enabled)
	v.SetDefault("store.path", d.Store.Path)
}

// LoadConfig loads <root>/.modcompat/config.json. A missing file yields the
// defaults; MODCOMPAT_LOGGING_LEVEL and friends override either. Relative
// paths are resolved against root.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, Dir))

	v.SetEnvPrefix("MODCOMPAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.New(errors.ConfigInvalid, "reading config", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "decoding config", err)
	}
	cfg.resolvePaths(root)
	return &cfg, nil
}

func (c *Config) resolvePaths(root string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	for i, p := range c.Compare.PlatformPaths {
		c.Compare.PlatformPaths[i] = abs(p)
	}
	c.Logging.File = abs(c.Logging.File)
	c.Report.Suppressions = abs(c.Report.Suppressions)
	c.Store.Path = abs(c.Store.Path)
}

// Save writes the configuration to <root>/.modcompat/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0o644)
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if !oneOf(c.Logging.Format, "human", "json") {
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	if _, err := slogutil.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error()}
	}
	if _, err := slogutil.ParseSize(c.Logging.MaxSize); err != nil {
		return &ConfigError{Field: "logging.maxSize", Message: err.Error()}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	if c.Registry.CacheSize < 0 {
		return &ConfigError{Field: "registry.cacheSize", Message: "must not be negative"}
	}
	if _, err := facts.ParseAccessOrder(c.Compare.AccessOrder); err != nil {
		return &ConfigError{Field: "compare.accessOrder", Message: err.Error()}
	}
	if c.Compare.Parallelism < 0 {
		return &ConfigError{Field: "compare.parallelism", Message: "must not be negative"}
	}
	if !oneOf(c.Report.Format, "human", "json") {
		return &ConfigError{Field: "report.format", Message: "must be human or json"}
	}
	if _, err := modversion.ParseBump(c.Report.FailOn); err != nil {
		return &ConfigError{Field: "report.failOn", Message: "must be major, minor or none"}
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return &ConfigError{Field: "store.path", Message: "required when the store is enabled"}
	}
	return nil
}

// AccessOrder returns the configured accessibility ranking.
func (c *Config) AccessOrder() facts.AccessOrder {
	o, err := facts.ParseAccessOrder(c.Compare.AccessOrder)
	if err != nil {
		return facts.StandardOrder
	}
	return o
}

// FailOn returns the bump at which a comparison fails.
func (c *Config) FailOn() modversion.Bump {
	b, _ := modversion.ParseBump(c.Report.FailOn)
	return b
}

// LogOptions converts the logging section for slogutil.Setup.
func (c *Config) LogOptions() slogutil.Options {
	size, _ := slogutil.ParseSize(c.Logging.MaxSize)
	opts := slogutil.Options{
		Format:     slogutil.Format(c.Logging.Format),
		Level:      slogutil.LevelFromString(c.Logging.Level),
		File:       c.Logging.File,
		MaxBackups: c.Logging.MaxBackups,
	}
	if size > 0 {
		opts.MaxSize = c.Logging.MaxSize
	}
	return opts
}

func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// Unwrap places CONFIG_INVALID in the chain for errors.Code and HasCode.
func (e *ConfigError) Unwrap() error {
	return errors.New(errors.ConfigInvalid, "", nil)
}
