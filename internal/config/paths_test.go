package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir() returned empty string")
	}

	if !strings.Contains(dir, "brewery") {
		t.Errorf("ConfigDir() should contain 'brewery': %s", dir)
	}

	switch runtime.GOOS {
	case "darwin":
		if !strings.Contains(dir, "Library/Application Support") {
			t.Errorf("macOS ConfigDir() should be in Library/Application Support: %s", dir)
		}
	case "windows":
		if !strings.Contains(strings.ToLower(dir), "appdata") {
			t.Errorf("Windows ConfigDir() should be in APPDATA: %s", dir)
		}
	default:
		if !strings.Contains(dir, ".config") && os.Getenv("XDG_CONFIG_HOME") == "" {
			t.Errorf("Linux ConfigDir() should be in .config: %s", dir)
		}
	}
}

func TestXDGOverrides(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG variables only apply on Linux and BSD")
	}

	cfgHome := t.TempDir()
	dataHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", dataHome)

	if got, want := ConfigPath(), filepath.Join(cfgHome, "brewery", "config.toml"); got != want {
		t.Errorf("ConfigPath() = %s, want %s", got, want)
	}
	if got, want := HistoryPath(), filepath.Join(dataHome, "brewery", "history.db"); got != want {
		t.Errorf("HistoryPath() = %s, want %s", got, want)
	}
	if got, want := LogPath(), filepath.Join(dataHome, "brewery", "brewery.log"); got != want {
		t.Errorf("LogPath() = %s, want %s", got, want)
	}
}

func TestEnsureDirs(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG variables only apply on Linux and BSD")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() error: %v", err)
	}
	if info, err := os.Stat(ConfigDir()); err != nil || !info.IsDir() {
		t.Errorf("config dir not created: %v", err)
	}

	if err := EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir() error: %v", err)
	}
	if info, err := os.Stat(DataDir()); err != nil || !info.IsDir() {
		t.Errorf("data dir not created: %v", err)
	}
}
