package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_GigaChat(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Providers.GigaChat.Model != "GigaChat-Pro" {
		t.Errorf("Model = %q, want %q", cfg.Providers.GigaChat.Model, "GigaChat-Pro")
	}
	if cfg.Providers.GigaChat.Scope != "GIGACHAT_API_PERS" {
		t.Errorf("Scope = %q, want GIGACHAT_API_PERS", cfg.Providers.GigaChat.Scope)
	}
	if cfg.Providers.GigaChat.TimeoutSeconds <= 0 {
		t.Error("TimeoutSeconds should have a positive default")
	}
	if cfg.Providers.GigaChat.Temperature == 0 {
		t.Error("Temperature should have a non-zero default")
	}
}

func TestDefaultConfig_Dialog(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dialog.MaxTurns != 8 {
		t.Errorf("MaxTurns = %d, want 8", cfg.Dialog.MaxTurns)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such-config.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dialog.MaxTurns != 8 {
		t.Errorf("missing file should fall back to defaults")
	}
}

func TestLoadConfig_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"dialog":{"max_turns":4},"providers":{"gigachat":{"model":"GigaChat"}}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GIGACHAT_MODEL", "GigaChat-Max")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Dialog.MaxTurns != 4 {
		t.Errorf("MaxTurns = %d, want 4 from file", cfg.Dialog.MaxTurns)
	}
	if cfg.Providers.GigaChat.Model != "GigaChat-Max" {
		t.Errorf("Model = %q, want env override GigaChat-Max", cfg.Providers.GigaChat.Model)
	}
}

func TestFlexibleStringSlice_MixedTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"channels":{"discord":{"allow_from":["123", 456]}}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	got := []string(cfg.Channels.Discord.AllowFrom)
	if len(got) != 2 || got[0] != "123" || got[1] != "456" {
		t.Errorf("AllowFrom = %v, want [123 456]", got)
	}
}
