// Package daemon loads numgen's configuration and wires its services for
// both one-shot CLI runs and the long-running API server.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tutu-network/numgen/internal/app/generator"
)

// Config holds all numgen configuration.
type Config struct {
	Generate  GenerateConfig  `toml:"generate"`
	API       APIConfig       `toml:"api"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Cache     CacheConfig     `toml:"cache"`
}

// GenerateConfig holds defaults for the generate command.
type GenerateConfig struct {
	Count          int    `toml:"count"`
	LocalLength    int    `toml:"local_length"`
	FilenamePrefix string `toml:"filename_prefix"`
	OutputDir      string `toml:"output_dir"`
	Format         string `toml:"format"`
	StrictLength   bool   `toml:"strict_length"`
	Progress       bool   `toml:"progress"`

	// MaxAttemptsFactor is informational: a run stops after count times
	// this many candidates. Only the built-in value is accepted.
	MaxAttemptsFactor int `toml:"max_attempts_factor"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	MaxCount    int      `toml:"max_count"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	Mode  string `toml:"mode"` // "dev" (console) or "prod" (JSON)
}

// TelemetryConfig controls metrics exposure.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// CacheConfig sizes the API server's resolution cache.
type CacheConfig struct {
	ResolverEntries int `toml:"resolver_entries"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Generate: GenerateConfig{
			FilenamePrefix:    "numbers",
			OutputDir:         ".",
			Format:            "csv",
			Progress:          true,
			MaxAttemptsFactor: generator.AttemptFactor,
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8790,
			CORSOrigins: []string{"*"},
			MaxCount:    10000,
		},
		Logging: LoggingConfig{
			Level: "info",
			Mode:  "dev",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Cache: CacheConfig{
			ResolverEntries: 1024,
		},
	}
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(numgenHome(), "config.toml")
}

// LoadConfig reads config from $NUMGEN_HOME/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile reads config from path, falling back to defaults when the
// file does not exist. Keys missing from the file keep their defaults.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse config: unknown keys %v", undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values no command could use.
func (c Config) Validate() error {
	if c.Generate.Count < 0 {
		return fmt.Errorf("config: generate.count must be >= 0")
	}
	if c.Generate.LocalLength < 0 {
		return fmt.Errorf("config: generate.local_length must be >= 0")
	}
	if c.Generate.MaxAttemptsFactor != generator.AttemptFactor {
		return fmt.Errorf("config: generate.max_attempts_factor is fixed at %d", generator.AttemptFactor)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("config: api.port %d out of range", c.API.Port)
	}
	if c.API.MaxCount < 1 {
		return fmt.Errorf("config: api.max_count must be >= 1")
	}
	return nil
}

// SaveConfig writes the config to $NUMGEN_HOME/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigFile(ConfigPath(), cfg)
}

// SaveConfigFile writes the config to path.
func SaveConfigFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// numgenHome returns the numgen data directory.
func numgenHome() string {
	if env := os.Getenv("NUMGEN_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".numgen")
}
