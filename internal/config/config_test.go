package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.PruningThreshold != 0.1 {
		t.Errorf("PruningThreshold = %f, want 0.1", cfg.Engine.PruningThreshold)
	}
	if cfg.Engine.StrengthenRate != 0.1 {
		t.Errorf("StrengthenRate = %f, want 0.1", cfg.Engine.StrengthenRate)
	}
	if cfg.Node.DefaultThreshold != 0.5 {
		t.Errorf("DefaultThreshold = %f, want 0.5", cfg.Node.DefaultThreshold)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Trace.Enabled {
		t.Error("tracing should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.PruningThreshold != 0.1 {
		t.Errorf("PruningThreshold = %f, want the default", cfg.Engine.PruningThreshold)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "synaptic.yaml", `
engine:
  pruning_threshold: 0.2
  strengthen_rate: 0.15
node:
  default_threshold: 0.7
logging:
  level: debug
trace:
  enabled: true
  dir: /tmp/synaptic-test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.PruningThreshold != 0.2 {
		t.Errorf("PruningThreshold = %f, want 0.2", cfg.Engine.PruningThreshold)
	}
	if cfg.Engine.StrengthenRate != 0.15 {
		t.Errorf("StrengthenRate = %f, want 0.15", cfg.Engine.StrengthenRate)
	}
	if cfg.Node.DefaultThreshold != 0.7 {
		t.Errorf("DefaultThreshold = %f, want 0.7", cfg.Node.DefaultThreshold)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if !cfg.Trace.Enabled {
		t.Error("tracing should be enabled")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "synaptic.yaml", `
logging:
  level: trace
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("Level = %q, want trace", cfg.Logging.Level)
	}
	if cfg.Engine.PruningThreshold != 0.1 {
		t.Errorf("PruningThreshold = %f, want the default 0.1", cfg.Engine.PruningThreshold)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "synaptic.yaml", "engine: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML should fail to load")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SYNAPTIC_LOG_LEVEL", "debug")
	t.Setenv("SYNAPTIC_TRACE_DIR", "/tmp/override")
	t.Setenv("SYNAPTIC_TRACE_ENABLED", "true")
	t.Setenv("SYNAPTIC_PRUNING_THRESHOLD", "0.25")
	t.Setenv("SYNAPTIC_STRENGTHEN_RATE", "0.2")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Trace.Dir != "/tmp/override" {
		t.Errorf("Dir = %q, want /tmp/override", cfg.Trace.Dir)
	}
	if !cfg.Trace.Enabled {
		t.Error("SYNAPTIC_TRACE_ENABLED=true should enable tracing")
	}
	if cfg.Engine.PruningThreshold != 0.25 {
		t.Errorf("PruningThreshold = %f, want 0.25", cfg.Engine.PruningThreshold)
	}
	if cfg.Engine.StrengthenRate != 0.2 {
		t.Errorf("StrengthenRate = %f, want 0.2", cfg.Engine.StrengthenRate)
	}
}

func TestEnvOverridesIgnoreBadNumbers(t *testing.T) {
	t.Setenv("SYNAPTIC_PRUNING_THRESHOLD", "lots")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.PruningThreshold != 0.1 {
		t.Errorf("PruningThreshold = %f, want default on a bad override", cfg.Engine.PruningThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"pruning threshold too high", func(c *Config) { c.Engine.PruningThreshold = 1.5 }, true},
		{"pruning threshold negative", func(c *Config) { c.Engine.PruningThreshold = -0.1 }, true},
		{"strengthen rate too high", func(c *Config) { c.Engine.StrengthenRate = 2 }, true},
		{"default threshold out of range", func(c *Config) { c.Node.DefaultThreshold = 1.2 }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"empty log level allowed", func(c *Config) { c.Logging.Level = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
