package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envConfigPath  = "CHATPOP_CONFIG"
	envPersona     = "CHATPOP_PERSONA"
	envProvider    = "CHATPOP_PROVIDER"
	envContactName = "CHATPOP_CONTACT_NAME"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Chat      ChatConfig      `json:"chat"`
	Responder ResponderConfig `json:"responder"`
	Providers ProvidersConfig `json:"providers"`
	Music     MusicConfig     `json:"music"`
	Preview   PreviewConfig   `json:"preview"`
	Logging   LoggingConfig   `json:"logging,omitempty"`
}

// ChatConfig describes the primary conversation contact.
type ChatConfig struct {
	ContactName string `json:"contact_name"`
	Persona     string `json:"persona"`
}

// ResponderConfig controls the auto-responder model settings.
type ResponderConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// ProvidersConfig stores per-provider connection settings.
type ProvidersConfig struct {
	OpenAI OpenAIProviderConfig `json:"openai"`
}

// OpenAIProviderConfig configures the OpenAI provider client. The fantasy
// provider reads the same block.
type OpenAIProviderConfig struct {
	APIKeyEnv             string `json:"api_key_env"`
	BaseURL               string `json:"base_url"`
	Organization          string `json:"organization"`
	Project               string `json:"project"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// MusicConfig configures the song metadata catalog client.
type MusicConfig struct {
	BaseURL               string `json:"base_url"`
	CacheTTLSeconds       int    `json:"cache_ttl_seconds"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// PreviewConfig configures outgoing link previews.
type PreviewConfig struct {
	Enabled               bool `json:"enabled"`
	RequestTimeoutSeconds int  `json:"request_timeout_seconds"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// Default returns the configuration the app runs with when no config.json
// exists: mock responder, public catalog, previews on.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			ContactName: "Samantha",
			Persona:     "a warm, playful friend who texts in short casual messages and loves sharing music",
		},
		Responder: ResponderConfig{
			Provider:    "mock",
			Model:       "openai/gpt-4o-mini",
			MaxTokens:   256,
			Temperature: 0.8,
		},
		Preview: PreviewConfig{
			Enabled:               true,
			RequestTimeoutSeconds: 5,
		},
	}
}

// LoadConfig resolves config.json, unmarshals it, and applies environment
// overrides. A missing config file is not an error; the defaults apply.
func LoadConfig() (*Config, error) {
	configPath, found, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if found {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	applyFallbacks(cfg)

	return cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if persona := strings.TrimSpace(os.Getenv(envPersona)); persona != "" {
		cfg.Chat.Persona = persona
	}
	if provider := strings.TrimSpace(os.Getenv(envProvider)); provider != "" {
		cfg.Responder.Provider = provider
	}
	if name := strings.TrimSpace(os.Getenv(envContactName)); name != "" {
		cfg.Chat.ContactName = name
	}
}

// applyFallbacks fills fields a partial config file left empty.
func applyFallbacks(cfg *Config) {
	defaults := Default()

	if strings.TrimSpace(cfg.Chat.ContactName) == "" {
		cfg.Chat.ContactName = defaults.Chat.ContactName
	}
	if strings.TrimSpace(cfg.Chat.Persona) == "" {
		cfg.Chat.Persona = defaults.Chat.Persona
	}
	if strings.TrimSpace(cfg.Responder.Provider) == "" {
		cfg.Responder.Provider = defaults.Responder.Provider
	}
	if strings.TrimSpace(cfg.Responder.Model) == "" {
		cfg.Responder.Model = defaults.Responder.Model
	}
	if cfg.Preview.RequestTimeoutSeconds <= 0 {
		cfg.Preview.RequestTimeoutSeconds = defaults.Preview.RequestTimeoutSeconds
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is CHATPOP_CONFIG first, then cwd-local fallback paths. The
// boolean reports whether any file was found.
func findConfigPath() (string, bool, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, true, nil
		}
		return "", false, fmt.Errorf("CHATPOP_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}

	return "", false, nil
}
