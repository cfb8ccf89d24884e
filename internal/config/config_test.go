package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	cerrors "modcompat/internal/errors"
	"modcompat/internal/facts"
	"modcompat/internal/modversion"
	"modcompat/internal/slogutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Registry.CacheSize != 1024 {
		t.Errorf("Registry.CacheSize = %d, want 1024", cfg.Registry.CacheSize)
	}
	if cfg.Compare.AccessOrder != "standard" {
		t.Errorf("Compare.AccessOrder = %q, want standard", cfg.Compare.AccessOrder)
	}
	if len(cfg.Compare.PlatformModules) != 1 || cfg.Compare.PlatformModules[0] != "java.base" {
		t.Errorf("Compare.PlatformModules = %v, want [java.base]", cfg.Compare.PlatformModules)
	}
	if cfg.Store.Enabled {
		t.Error("history should be off by default")
	}
	if cfg.Store.Path != filepath.Join(".modcompat", "history.db") {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.FailOn() != modversion.BumpNone {
		t.Errorf("FailOn() = %v, want none", cfg.FailOn())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"legacy order", func(c *Config) { c.Compare.AccessOrder = "legacy" }, ""},
		{"fail on major", func(c *Config) { c.Report.FailOn = "major" }, ""},
		{"unsupported version", func(c *Config) { c.Version = 2 }, "version"},
		{"logging format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"logging level", func(c *Config) { c.Logging.Level = "chatty" }, "logging.level"},
		{"logging size", func(c *Config) { c.Logging.MaxSize = "big" }, "logging.maxSize"},
		{"logging backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.maxBackups"},
		{"cache size", func(c *Config) { c.Registry.CacheSize = -5 }, "registry.cacheSize"},
		{"access order", func(c *Config) { c.Compare.AccessOrder = "alphabetical" }, "compare.accessOrder"},
		{"parallelism", func(c *Config) { c.Compare.Parallelism = -1 }, "compare.parallelism"},
		{"report format", func(c *Config) { c.Report.Format = "yaml" }, "report.format"},
		{"fail on", func(c *Config) { c.Report.FailOn = "patch" }, "report.failOn"},
		{"store path", func(c *Config) { c.Store.Enabled, c.Store.Path = true, "" }, "store.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() error = %v (%T), want *ConfigError", err, err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
			if !cerrors.HasCode(err, cerrors.ConfigInvalid) {
				t.Error("ConfigError should carry CONFIG_INVALID")
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported version 99"}
	want := "config error in field 'version': unsupported version 99"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d (default)", cfg.Version, CurrentVersion)
	}
	if cfg.Store.Path != filepath.Join(tmpDir, ".modcompat", "history.db") {
		t.Errorf("Store.Path = %q, want it under the root", cfg.Store.Path)
	}
	if len(cfg.Compare.PlatformPaths) != 1 || cfg.Compare.PlatformPaths[0] != filepath.Join(tmpDir, ".modcompat", "platform") {
		t.Errorf("PlatformPaths = %v", cfg.Compare.PlatformPaths)
	}
}

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".modcompat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create .modcompat dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{
		"version": 1,
		"logging": {"level": "debug", "format": "json"},
		"compare": {"accessOrder": "legacy", "platformPaths": ["/opt/jdk/manifests", "extra"]},
		"report": {"failOn": "minor", "suppressions": "accepted.toml"}
	}`)

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AccessOrder() != facts.LegacyOrder {
		t.Errorf("AccessOrder() = %v, want legacy", cfg.AccessOrder())
	}
	if cfg.FailOn() != modversion.BumpMinor {
		t.Errorf("FailOn() = %v, want minor", cfg.FailOn())
	}
	if got := cfg.Compare.PlatformPaths; len(got) != 2 || got[0] != "/opt/jdk/manifests" || got[1] != filepath.Join(tmpDir, "extra") {
		t.Errorf("PlatformPaths = %v", got)
	}
	if cfg.Report.Suppressions != filepath.Join(tmpDir, "accepted.toml") {
		t.Errorf("Suppressions = %q", cfg.Report.Suppressions)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Registry.CacheSize != 1024 {
		t.Errorf("Registry.CacheSize = %d, want 1024", cfg.Registry.CacheSize)
	}
	if len(cfg.Compare.PlatformModules) != 1 {
		t.Errorf("PlatformModules = %v", cfg.Compare.PlatformModules)
	}

	opts := cfg.LogOptions()
	if opts.Format != slogutil.FormatJSON || opts.Level != slog.LevelDebug {
		t.Errorf("LogOptions() = %+v", opts)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"version": 1, "logging": {"level": "debug"}}`)
	t.Setenv("MODCOMPAT_LOGGING_LEVEL", "error")
	t.Setenv("MODCOMPAT_REGISTRY_CACHESIZE", "16")
	t.Setenv("MODCOMPAT_STORE_ENABLED", "true")

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, env should win over the file", cfg.Logging.Level)
	}
	if cfg.Registry.CacheSize != 16 {
		t.Errorf("Registry.CacheSize = %d, want 16", cfg.Registry.CacheSize)
	}
	if !cfg.Store.Enabled {
		t.Error("Store.Enabled should come from the environment")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"version": 1,`)

	_, err := LoadConfig(tmpDir)
	if err == nil {
		t.Fatal("LoadConfig() should fail on malformed JSON")
	}
	if !cerrors.HasCode(err, cerrors.ConfigInvalid) {
		t.Errorf("error = %v, want CONFIG_INVALID", err)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Registry.CacheSize = 42
	cfg.Report.FailOn = "major"
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Registry.CacheSize != 42 {
		t.Errorf("Registry.CacheSize = %d, want 42", loaded.Registry.CacheSize)
	}
	if loaded.FailOn() != modversion.BumpMajor {
		t.Errorf("FailOn() = %v, want major", loaded.FailOn())
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("saved config should validate: %v", err)
	}
}
