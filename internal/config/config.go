package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all wburn configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Budget     BudgetConfig     `toml:"budget"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// ServerConfig holds expense server connection settings.
type ServerConfig struct {
	BaseURL      string `toml:"base_url,omitempty"`
	SharedSecret string `toml:"shared_secret,omitempty"`
}

// BudgetConfig holds local budget preferences.
type BudgetConfig struct {
	// FallbackWeekly is used until the first successful budget fetch.
	FallbackWeekly float64 `toml:"fallback_weekly"`
}

// AppearanceConfig holds display settings.
type AppearanceConfig struct {
	Currency string `toml:"currency"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Budget: BudgetConfig{
			FallbackWeekly: 110.0,
		},
		Appearance: AppearanceConfig{
			Currency: "£",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment variables override file values.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg. Env wins over the file so
// a deployment can point an installed binary at a different server without
// touching the config on disk.
func applyEnv(cfg *Config) {
	if url := os.Getenv("WBURN_SERVER_URL"); url != "" {
		cfg.Server.BaseURL = url
	}
	if secret := os.Getenv("WBURN_SECRET"); secret != "" {
		cfg.Server.SharedSecret = secret
	}
}

// Save writes the config to disk. The file is created 0600 since it carries
// the shared signing secret.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Require validates that the settings every networked command depends on are
// present. Their absence is a fatal configuration error, not something to
// limp along without.
func (c Config) Require() error {
	if c.Server.BaseURL == "" {
		return errors.New("no server URL configured (set server.base_url or WBURN_SERVER_URL)")
	}
	if c.Server.SharedSecret == "" {
		return errors.New("no signing secret configured (set server.shared_secret or WBURN_SECRET)")
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
