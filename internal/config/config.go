package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all rekindle configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Dormant  DormantConfig  `yaml:"dormant"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider"` // "anthropic", "openai", "ollama"
	Model        string `yaml:"model"`
	AnthropicKey string `yaml:"anthropic_key"`
	OpenAIKey    string `yaml:"openai_key"`
	OllamaURL    string `yaml:"ollama_url"`
	OllamaModel  string `yaml:"ollama_model"`
}

type PipelineConfig struct {
	// LookbackMonths bounds the backward walk through history.
	LookbackMonths int `yaml:"lookback_months"`
	// WindowDelayMS is the fixed pause between window requests, respecting
	// collaborator-side rate limits.
	WindowDelayMS int `yaml:"window_delay_ms"`
	// Schedule is a 5-field cron expression for periodic runs; empty disables
	// the scheduler.
	Schedule string `yaml:"schedule"`
}

type DormantConfig struct {
	MinDaysSince int `yaml:"min_days_since"`
	MinTotalSent int `yaml:"min_total_sent"`
	Limit        int `yaml:"limit"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37710,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		LLM: LLMConfig{
			Provider: "anthropic",
		},
		Pipeline: PipelineConfig{
			LookbackMonths: 36,
			WindowDelayMS:  500,
			Schedule:       "", // on-demand only unless configured
		},
		Dormant: DormantConfig{
			MinDaysSince: 30,
			MinTotalSent: 3,
			Limit:        20,
		},
	}
}

// DefaultPath returns the default config file path: ~/.rekindle/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".rekindle", "config.yaml"), nil
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error — defaults apply. Environment API keys override file values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.AnthropicKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}

	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
