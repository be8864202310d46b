package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 37710 {
		t.Errorf("port = %d, want 37710", cfg.Server.Port)
	}
	if cfg.Pipeline.LookbackMonths != 36 {
		t.Errorf("lookback = %d, want 36", cfg.Pipeline.LookbackMonths)
	}
	if cfg.Dormant.MinDaysSince != 30 || cfg.Dormant.MinTotalSent != 3 || cfg.Dormant.Limit != 20 {
		t.Errorf("dormant defaults = %+v, want 30/3/20", cfg.Dormant)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("provider = %q, want anthropic", cfg.LLM.Provider)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != Default().Server.Port {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 9000
pipeline:
  lookback_months: 12
  schedule: "0 3 * * *"
dormant:
  min_days_since: 45
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Pipeline.LookbackMonths != 12 {
		t.Errorf("lookback = %d, want 12", cfg.Pipeline.LookbackMonths)
	}
	if cfg.Pipeline.Schedule != "0 3 * * *" {
		t.Errorf("schedule = %q, want cron expression", cfg.Pipeline.Schedule)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Bind != "127.0.0.1" {
		t.Errorf("bind = %q, want default", cfg.Server.Bind)
	}
	if cfg.Dormant.MinDaysSince != 45 {
		t.Errorf("min_days_since = %d, want 45", cfg.Dormant.MinDaysSince)
	}
	if cfg.Dormant.Limit != 20 {
		t.Errorf("limit = %d, want default 20", cfg.Dormant.Limit)
	}
}

func TestLoadEnvOverridesKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.AnthropicKey != "env-key" {
		t.Errorf("anthropic key = %q, want env override", cfg.LLM.AnthropicKey)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed yaml")
	}
}

func TestListenAddr(t *testing.T) {
	cfg := Default()
	if got := cfg.ListenAddr(); got != "127.0.0.1:37710" {
		t.Errorf("ListenAddr = %q, want 127.0.0.1:37710", got)
	}
}
