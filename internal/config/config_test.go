package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Engine.CacheCapacity != 64 {
		t.Errorf("expected cache capacity 64, got %d", cfg.Engine.CacheCapacity)
	}
	if cfg.Engine.DetailsDebounce.Duration != 300*time.Millisecond {
		t.Errorf("expected 300ms details debounce, got %s", cfg.Engine.DetailsDebounce)
	}
	if cfg.Engine.SearchDebounce.Duration != 300*time.Millisecond {
		t.Errorf("expected 300ms search debounce, got %s", cfg.Engine.SearchDebounce)
	}
	if cfg.Display.IdleTick.Duration != time.Second {
		t.Errorf("expected 1s idle tick, got %s", cfg.Display.IdleTick)
	}
	if cfg.Display.ActiveTick.Duration != 80*time.Millisecond {
		t.Errorf("expected 80ms active tick, got %s", cfg.Display.ActiveTick)
	}
	if !cfg.Display.Color {
		t.Error("expected Color to be true by default")
	}
	if !cfg.History.Persist {
		t.Error("expected Persist to be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capacity", func(c *Config) { c.Engine.CacheCapacity = 0 }, "cache_capacity"},
		{"zero threshold", func(c *Config) { c.Engine.RapidScrollThreshold = 0 }, "rapid_scroll_threshold"},
		{"negative debounce", func(c *Config) { c.Engine.SearchDebounce = Dur(-time.Second) }, "debounce"},
		{"fast idle tick", func(c *Config) { c.Display.IdleTick = Dur(50 * time.Millisecond) }, "active_tick"},
		{"unknown icons", func(c *Config) { c.Display.Icons = "emoji" }, "display.icons"},
		{"zero retention", func(c *Config) { c.Engine.ActivityRetention = 0 }, "activity_retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestShouldUseColor(t *testing.T) {
	cfg := Default()

	t.Setenv("NO_COLOR", "")
	if !cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return true")
	}

	t.Setenv("NO_COLOR", "1")
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when NO_COLOR is set")
	}

	t.Setenv("NO_COLOR", "")
	cfg.Display.Color = false
	if cfg.ShouldUseColor() {
		t.Error("expected ShouldUseColor() to return false when Color is false")
	}
}

func TestUseASCIIIcons(t *testing.T) {
	tests := []struct {
		icons string
		env   string
		want  bool
	}{
		{IconsAuto, "", false},
		{IconsAuto, "1", true},
		{IconsAuto, "false", false},
		{IconsASCII, "", true},
		{IconsNerd, "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.icons+"/"+tt.env, func(t *testing.T) {
			t.Setenv("BREWERY_ASCII", tt.env)
			cfg := Default()
			cfg.Display.Icons = tt.icons
			if got := cfg.UseASCIIIcons(); got != tt.want {
				t.Errorf("UseASCIIIcons() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Engine.CacheCapacity = 16
	cfg.Engine.DetailsDebounce = Dur(150 * time.Millisecond)
	cfg.General.BrewBinary = "/opt/homebrew/bin/brew"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if loaded.Engine.CacheCapacity != 16 {
		t.Errorf("CacheCapacity = %d, want 16", loaded.Engine.CacheCapacity)
	}
	if loaded.Engine.DetailsDebounce.Duration != 150*time.Millisecond {
		t.Errorf("DetailsDebounce = %s, want 150ms", loaded.Engine.DetailsDebounce)
	}
	if loaded.General.BrewBinary != "/opt/homebrew/bin/brew" {
		t.Errorf("BrewBinary = %s", loaded.General.BrewBinary)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[engine]\nconfirm_timeout = \"2s\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Engine.ConfirmTimeout.Duration != 2*time.Second {
		t.Errorf("ConfirmTimeout = %s, want 2s", cfg.Engine.ConfirmTimeout)
	}
	if cfg.Engine.CacheCapacity != 64 {
		t.Errorf("unset fields should keep defaults, got capacity %d", cfg.Engine.CacheCapacity)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[display]\nidle_tick = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("LoadFrom() should reject an unparseable duration")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadFrom("/non/existent/path/config.toml")
	if err != nil {
		t.Fatalf("LoadFrom() should not error for non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadFrom() should return default config for non-existent file")
	}

	if cfg.Engine.CacheCapacity != 64 {
		t.Error("expected default cache capacity")
	}
}
