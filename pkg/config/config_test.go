package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig with no file: %v", err)
	}
	if cfg.Responder.Provider != "mock" {
		t.Fatalf("default provider = %q, want mock", cfg.Responder.Provider)
	}
	if cfg.Chat.ContactName == "" || cfg.Chat.Persona == "" {
		t.Fatalf("defaults incomplete: %+v", cfg.Chat)
	}
	if !cfg.Preview.Enabled {
		t.Fatal("previews should default to enabled")
	}
}

func TestLoadConfigReadsFileAndFillsGaps(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	body := `{
		"chat": {"contact_name": "Max"},
		"responder": {"provider": "openai", "model": "openai/gpt-4o"},
		"music": {"base_url": "http://localhost:9999"}
	}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Chat.ContactName != "Max" {
		t.Fatalf("contact = %q", cfg.Chat.ContactName)
	}
	if cfg.Responder.Provider != "openai" {
		t.Fatalf("provider = %q", cfg.Responder.Provider)
	}
	if cfg.Music.BaseURL != "http://localhost:9999" {
		t.Fatalf("music base url = %q", cfg.Music.BaseURL)
	}
	if cfg.Chat.Persona == "" {
		t.Fatal("persona gap not filled from defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHATPOP_PROVIDER", "fantasy")
	t.Setenv("CHATPOP_CONTACT_NAME", "Riley")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Responder.Provider != "fantasy" {
		t.Fatalf("provider = %q, want fantasy", cfg.Responder.Provider)
	}
	if cfg.Chat.ContactName != "Riley" {
		t.Fatalf("contact = %q, want Riley", cfg.Chat.ContactName)
	}
}

func TestExplicitConfigPathMustExist(t *testing.T) {
	t.Setenv("CHATPOP_CONFIG", filepath.Join(t.TempDir(), "nope.json"))

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for dangling CHATPOP_CONFIG")
	}
}

func TestMalformedConfigFails(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}
