// Package config provides unified configuration loading for synaptic.
// It supports loading from YAML files and environment variables, plus the
// YAML topology format consumed by the run and serve commands.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config contains all synaptic configuration settings.
type Config struct {
	// Engine contains plasticity engine tuning.
	Engine EngineConfig `json:"engine" yaml:"engine"`

	// Node contains defaults applied to nodes that do not set their own.
	Node NodeConfig `json:"node" yaml:"node"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Trace contains settings for the telemetry journal.
	Trace TraceConfig `json:"trace" yaml:"trace"`
}

// EngineConfig tunes the plasticity engine.
type EngineConfig struct {
	// PruningThreshold is the weight below which edges are pruned.
	PruningThreshold float64 `json:"pruning_threshold" yaml:"pruning_threshold"`

	// StrengthenRate is the weight increment for hot edges.
	StrengthenRate float64 `json:"strengthen_rate" yaml:"strengthen_rate"`

	// WeakenRate is reserved for a future depression pass.
	WeakenRate float64 `json:"weaken_rate" yaml:"weaken_rate"`

	// MaxRedundantPaths is reserved.
	MaxRedundantPaths int `json:"max_redundant_paths" yaml:"max_redundant_paths"`

	// MetricsCap bounds the engine's per-edge metrics map.
	MetricsCap int `json:"metrics_cap" yaml:"metrics_cap"`
}

// NodeConfig holds node defaults.
type NodeConfig struct {
	// DefaultThreshold is used by topology entries that omit a threshold.
	DefaultThreshold float64 `json:"default_threshold" yaml:"default_threshold"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to <dir>/decisions.jsonl.
	Level string `json:"level" yaml:"level"`
}

// TraceConfig configures the telemetry journal.
type TraceConfig struct {
	// Enabled turns the SQLite journal on.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the journal database and decision
	// traces. Defaults to ".synaptic" under the working directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			PruningThreshold:  0.1,
			StrengthenRate:    0.1,
			WeakenRate:        0.05,
			MaxRedundantPaths: 3,
			MetricsCap:        1024,
		},
		Node: NodeConfig{
			DefaultThreshold: 0.5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Trace: TraceConfig{
			Enabled: false,
			Dir:     ".synaptic",
		},
	}
}

// Load loads configuration from an optional YAML file plus environment
// variable overrides. Order: defaults -> file -> environment. A missing
// file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, loadErr := LoadFromFile(path)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = loaded
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Trace.Dir = os.ExpandEnv(config.Trace.Dir)
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.PruningThreshold < 0 || c.Engine.PruningThreshold > 1 {
		return fmt.Errorf("pruning_threshold must be between 0 and 1, got %f", c.Engine.PruningThreshold)
	}
	if c.Engine.StrengthenRate < 0 || c.Engine.StrengthenRate > 1 {
		return fmt.Errorf("strengthen_rate must be between 0 and 1, got %f", c.Engine.StrengthenRate)
	}
	if c.Node.DefaultThreshold < 0 || c.Node.DefaultThreshold > 1 {
		return fmt.Errorf("default_threshold must be between 0 and 1, got %f", c.Node.DefaultThreshold)
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SYNAPTIC_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("SYNAPTIC_TRACE_DIR"); v != "" {
		config.Trace.Dir = v
	}
	if v := os.Getenv("SYNAPTIC_TRACE_ENABLED"); v != "" {
		config.Trace.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SYNAPTIC_PRUNING_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Engine.PruningThreshold = f
		}
	}
	if v := os.Getenv("SYNAPTIC_STRENGTHEN_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Engine.StrengthenRate = f
		}
	}
}
