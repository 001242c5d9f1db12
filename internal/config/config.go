// Package config resolves run configuration from a yaml file, the
// environment, and the user's settings.json, in that order of
// increasing precedence for credentials.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxAttempts      = 2
	DefaultContextLimit     = 60
	DefaultSupportLimit     = 20
	DefaultTuneThreshold    = 0.85
	DefaultModel            = "glm-4.6"
	DefaultBaseURL          = "https://api.anthropic.com"
	DefaultLedgerPath       = "agent_history/ledger.db"
	DefaultHistoryDir       = "agent_history/prompts"
	DefaultHTTPTimeoutMS    = 120_000
	DefaultMaxOutputTokens  = 800
)

// ModelPricing holds per-million-token costs in USD, overriding the
// built-in table for a model.
type ModelPricing struct {
	InputPer1M  float64 `yaml:"input_per_1m"`
	OutputPer1M float64 `yaml:"output_per_1m"`
}

// Config is the full run configuration. Zero values are filled with
// defaults by Load.
type Config struct {
	// Provider names the model client: "anthropic", "openai", "gemini"
	// or "mock". Anthropic is the default, matching the eval endpoint.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	// AuthToken is never written back to disk; yaml is accepted for
	// local setups but env/settings.json are the normal sources.
	AuthToken string `yaml:"auth_token"`

	MaxAttempts     int     `yaml:"max_attempts"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	HTTPTimeoutMS   int     `yaml:"http_timeout_ms"`
	TuneThreshold   float64 `yaml:"tune_threshold"`

	ContextLimit int `yaml:"context_limit"`
	SupportLimit int `yaml:"support_limit"`

	TasksPath   string `yaml:"tasks_path"`
	GraphPath   string `yaml:"graph_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
	LedgerPath  string `yaml:"ledger_path"`
	HistoryDir  string `yaml:"history_dir"`

	Pricing map[string]ModelPricing `yaml:"pricing"`
}

// ErrNoCredentials is returned when no auth token can be resolved for a
// provider that needs one. The run must not start in that case.
var ErrNoCredentials = errors.New("model API token not configured: set ANTHROPIC_AUTH_TOKEN or update ~/.claude/settings.json")

// Load reads the yaml file at path (skipped when path is empty or the
// file does not exist), applies environment overrides and credential
// fallbacks, fills defaults, and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applySettingsFile()
	cfg.fillDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
		c.AuthToken = v
	} else if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" && c.AuthToken == "" {
		c.AuthToken = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_PROVIDER")); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		c.Model = v
	}
	if v := os.Getenv("MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxAttempts = n
		}
	}
}

// applySettingsFile backfills base URL and token from the env block of
// ~/.claude/settings.json when they are still unset. Parse errors are
// ignored; the file is optional.
func (c *Config) applySettingsFile() {
	if c.BaseURL != "" && c.AuthToken != "" {
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(home, ".claude", "settings.json"))
	if err != nil {
		return
	}
	var settings struct {
		Env map[string]string `json:"env"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return
	}
	if c.BaseURL == "" {
		c.BaseURL = strings.TrimRight(settings.Env["ANTHROPIC_BASE_URL"], "/")
	}
	if c.AuthToken == "" {
		c.AuthToken = settings.Env["ANTHROPIC_AUTH_TOKEN"]
	}
}

func (c *Config) fillDefaults() {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.HTTPTimeoutMS <= 0 {
		c.HTTPTimeoutMS = DefaultHTTPTimeoutMS
	}
	if c.TuneThreshold <= 0 {
		c.TuneThreshold = DefaultTuneThreshold
	}
	if c.ContextLimit <= 0 {
		c.ContextLimit = DefaultContextLimit
	}
	if c.SupportLimit <= 0 {
		c.SupportLimit = DefaultSupportLimit
	}
	if c.LedgerPath == "" {
		c.LedgerPath = DefaultLedgerPath
	}
	if c.HistoryDir == "" {
		c.HistoryDir = DefaultHistoryDir
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case "anthropic", "openai":
		if c.AuthToken == "" {
			return ErrNoCredentials
		}
	case "gemini":
		if c.AuthToken == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return ErrNoCredentials
		}
	case "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}
