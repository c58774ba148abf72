// Package config provides configuration types, defaults, and persistence for hopper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/hopper/internal/flags"
	"github.com/zjrosen/hopper/internal/log"
	"github.com/zjrosen/hopper/internal/tracing"
)

// Registry backends.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

// Config holds all configuration options for hopper.
type Config struct {
	Registry   RegistryConfig   `mapstructure:"registry"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Tracing    tracing.Config   `mapstructure:"tracing"`
	Flags      map[string]bool  `mapstructure:"flags"`
	Instances  []InstanceConfig `mapstructure:"instances"`
}

// RegistryConfig selects where instances are stored.
type RegistryConfig struct {
	// Backend is "yaml" (default) or "sqlite".
	Backend string `mapstructure:"backend"`
	// Path is the registry file. Empty means the config file itself for the
	// yaml backend and DefaultDatabasePath() for sqlite.
	Path string `mapstructure:"path"`
}

// NavigationConfig tunes the hop engine.
type NavigationConfig struct {
	LookbackWindow  int           `mapstructure:"lookback_window"`
	PatternCacheTTL time.Duration `mapstructure:"pattern_cache_ttl"`
	MatchTimeout    time.Duration `mapstructure:"match_timeout"`
}

// InstanceConfig is the persisted form of one instance. Exactly one of Regex
// and Literals is set.
type InstanceConfig struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	Regex     string   `mapstructure:"regex" yaml:"regex,omitempty"`
	Literals  []string `mapstructure:"literals" yaml:"literals,omitempty"`
	Placement string   `mapstructure:"placement" yaml:"placement,omitempty"`
}

// ConfigDir returns ~/.config/hopper, or "" if the home dir is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hopper")
}

// DefaultDatabasePath returns the sqlite registry location.
func DefaultDatabasePath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "instances.db")
}

// DefaultTracesFilePath returns the trace file used by the file exporter.
func DefaultTracesFilePath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Registry: RegistryConfig{
			Backend: BackendYAML,
		},
		Navigation: NavigationConfig{
			LookbackWindow:  100,
			PatternCacheTTL: 10 * time.Minute,
			MatchTimeout:    2 * time.Second,
		},
		Tracing: tc,
		Flags:   flags.Defaults(),
	}
}

// RegistryPath resolves the registry location for the configured backend.
// configPath is the config file in use.
func (c Config) RegistryPath(configPath string) string {
	if c.Registry.Path != "" {
		return c.Registry.Path
	}
	if c.Registry.Backend == BackendSQLite {
		return DefaultDatabasePath()
	}
	return configPath
}

// Validate checks the configuration for errors.
func Validate(c Config) error {
	switch c.Registry.Backend {
	case "", BackendYAML, BackendSQLite:
	default:
		return fmt.Errorf("registry.backend must be %q or %q, got %q", BackendYAML, BackendSQLite, c.Registry.Backend)
	}
	if c.Navigation.LookbackWindow <= 0 {
		return fmt.Errorf("navigation.lookback_window must be positive, got %d", c.Navigation.LookbackWindow)
	}
	if c.Navigation.PatternCacheTTL < 0 {
		return fmt.Errorf("navigation.pattern_cache_ttl must not be negative")
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	return ValidateInstances(c.Instances)
}

// ValidateTracing checks the tracing section.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "file" && t.FilePath == "" {
		return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
	}
	return nil
}

// ValidateInstances checks the shape of persisted instances. Name uniqueness
// and pattern rules are enforced again when the registry is built.
func ValidateInstances(insts []InstanceConfig) error {
	for i, inst := range insts {
		if inst.Name == "" {
			return fmt.Errorf("instances[%d]: name is required", i)
		}
		if (inst.Regex == "") == (len(inst.Literals) == 0) {
			return fmt.Errorf("instances[%d] %q: exactly one of regex or literals is required", i, inst.Name)
		}
		switch inst.Placement {
		case "", "natural", "start", "end":
		default:
			return fmt.Errorf("instances[%d] %q: placement must be natural, start or end, got %q", i, inst.Name, inst.Placement)
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Hopper Configuration

# Where named instances are stored
registry:
  backend: yaml        # "yaml" keeps them in this file under instances:, "sqlite" uses a database
  # path: ~/.config/hopper/instances.db

navigation:
  lookback_window: 100     # How far back to look for a match ending at the cursor
  pattern_cache_ttl: 10m   # How long compiled patterns stay cached
  match_timeout: 2s        # Per-match regex timeout

flags:
  watch-registry: true     # Reload instances in a session when the registry file changes
  validate-patterns: true  # Reject regexes that do not compile when adding or editing

# Tracing of hops and registry changes
# tracing:
#   enabled: true
#   exporter: file
#   file_path: ~/.config/hopper/traces/traces.jsonl

# Named search instances (yaml backend)
# instances:
#   - name: todo
#     regex: 'TODO\(\w+\)'
#     placement: start
#   - name: keywords
#     literals: [func, return]
instances: []
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
