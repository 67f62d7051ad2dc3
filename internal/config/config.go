// Package config loads and saves the brewery configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete brewery configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Engine  EngineConfig  `toml:"engine"`
	Display DisplayConfig `toml:"display"`
	History HistoryConfig `toml:"history"`
}

// GeneralConfig contains the external tool settings.
type GeneralConfig struct {
	// BrewBinary is the Homebrew executable name or path.
	BrewBinary string `toml:"brew_binary"`

	// GoBinary is the Go toolchain used for self-update and the remote version check.
	GoBinary string `toml:"go_binary"`

	// SelfModule is the module path brewery installs itself from.
	SelfModule string `toml:"self_module"`

	// DebugLog writes a debug log to the data directory.
	DebugLog bool `toml:"debug_log"`
}

// EngineConfig contains the runtime engine tunables.
type EngineConfig struct {
	CacheCapacity        int      `toml:"cache_capacity"`
	DetailsDebounce      Duration `toml:"details_debounce"`
	SearchDebounce       Duration `toml:"search_debounce"`
	RapidScrollThreshold int      `toml:"rapid_scroll_threshold"`
	ConfirmTimeout       Duration `toml:"confirm_timeout"`
	RemoteCheckTTL       Duration `toml:"remote_check_ttl"`
	FetchTimeout         Duration `toml:"fetch_timeout"`
	ActivityRetention    int      `toml:"activity_retention"`

	// OutdatedCheck runs `brew outdated` as part of every status refresh.
	OutdatedCheck bool `toml:"outdated_check"`
}

// DisplayConfig contains settings that only affect rendering cadence and look.
type DisplayConfig struct {
	IdleTick      Duration `toml:"idle_tick"`
	ActiveTick    Duration `toml:"active_tick"`
	InputActive   Duration `toml:"input_active"`
	ToastDuration Duration `toml:"toast_duration"`

	// Icons selects the glyph set: "auto", "nerd" or "ascii".
	Icons   string `toml:"icons"`
	Color   bool   `toml:"color"`
	Unicode bool   `toml:"unicode"`
}

// HistoryConfig controls activity persistence.
type HistoryConfig struct {
	Persist bool     `toml:"persist"`
	MaxAge  Duration `toml:"max_age"`
}

// Duration is a time.Duration that reads and writes as a string like "300ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Dur wraps a time.Duration.
func Dur(d time.Duration) Duration {
	return Duration{Duration: d}
}

// Icon modes.
const (
	IconsAuto  = "auto"
	IconsNerd  = "nerd"
	IconsASCII = "ascii"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			BrewBinary: "brew",
			GoBinary:   "go",
			SelfModule: "brewery",
		},
		Engine: EngineConfig{
			CacheCapacity:        64,
			DetailsDebounce:      Dur(300 * time.Millisecond),
			SearchDebounce:       Dur(300 * time.Millisecond),
			RapidScrollThreshold: 2,
			ConfirmTimeout:       Dur(5 * time.Second),
			RemoteCheckTTL:       Dur(10 * time.Minute),
			FetchTimeout:         Dur(60 * time.Second),
			ActivityRetention:    100,
			OutdatedCheck:        true,
		},
		Display: DisplayConfig{
			IdleTick:      Dur(time.Second),
			ActiveTick:    Dur(80 * time.Millisecond),
			InputActive:   Dur(500 * time.Millisecond),
			ToastDuration: Dur(5 * time.Second),
			Icons:         IconsAuto,
			Color:         true,
			Unicode:       true,
		},
		History: HistoryConfig{
			Persist: true,
			MaxAge:  Dur(30 * 24 * time.Hour),
		},
	}
}

// Load loads the configuration from the default path.
// If the config file doesn't exist, it returns the default configuration.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
// If the config file doesn't exist, it returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// Validate reports every setting the engine cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Engine.CacheCapacity <= 0 {
		problems = append(problems, "engine.cache_capacity must be positive")
	}
	if c.Engine.RapidScrollThreshold <= 0 {
		problems = append(problems, "engine.rapid_scroll_threshold must be positive")
	}
	if c.Engine.ActivityRetention <= 0 {
		problems = append(problems, "engine.activity_retention must be positive")
	}
	if c.Engine.DetailsDebounce.Duration < 0 || c.Engine.SearchDebounce.Duration < 0 {
		problems = append(problems, "engine debounce delays must not be negative")
	}
	if c.Engine.ConfirmTimeout.Duration <= 0 {
		problems = append(problems, "engine.confirm_timeout must be positive")
	}
	if c.Display.IdleTick.Duration <= 0 || c.Display.ActiveTick.Duration <= 0 {
		problems = append(problems, "display ticks must be positive")
	} else if c.Display.ActiveTick.Duration >= c.Display.IdleTick.Duration {
		problems = append(problems, "display.active_tick must be shorter than display.idle_tick")
	}
	switch c.Display.Icons {
	case IconsAuto, IconsNerd, IconsASCII:
	default:
		problems = append(problems, fmt.Sprintf("display.icons must be auto, nerd or ascii (got %q)", c.Display.Icons))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Display.Color
}

// UseASCIIIcons resolves the icon mode, consulting BREWERY_ASCII when set to auto.
func (c *Config) UseASCIIIcons() bool {
	switch c.Display.Icons {
	case IconsASCII:
		return true
	case IconsNerd:
		return false
	}
	switch strings.ToLower(os.Getenv("BREWERY_ASCII")) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
