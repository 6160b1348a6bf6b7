// Package config loads launch-gate settings from TOML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/pelletier/go-toml/v2"
)

// Config is the on-disk configuration.
type Config struct {
	AppName      string     `toml:"app_name"`
	StatusAddr   string     `toml:"status_addr"`
	StatusFile   string     `toml:"status_file"`
	JournalPath  string     `toml:"journal_path"`
	FetchTimeout string     `toml:"fetch_timeout"`
	MetricsAddr  string     `toml:"metrics_addr"`
	Text         TextConfig `toml:"text"`
}

// TextConfig overrides alert text per kind. Empty values fall back to defaults.
type TextConfig struct {
	ForceUpdate    AlertText `toml:"force_update"`
	OptionalUpdate AlertText `toml:"optional_update"`
	Notice         AlertText `toml:"notice"`
	FetchError     AlertText `toml:"fetch_error"`
}

// AlertText is the configurable text of one alert.
type AlertText struct {
	Title   string `toml:"title"`
	Message string `toml:"message"`
	Cancel  string `toml:"cancel"`
	Done    string `toml:"done"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		AppName:      "app",
		StatusFile:   "status.json",
		JournalPath:  "launchgate.db",
		FetchTimeout: "5s",
	}
}

// #region load
// Load reads path, falling back to Default when the file does not exist,
// then applies LAUNCHGATE_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.AppName = envOr("LAUNCHGATE_APP_NAME", cfg.AppName)
	cfg.StatusAddr = envOr("LAUNCHGATE_STATUS_ADDR", cfg.StatusAddr)
	cfg.JournalPath = envOr("LAUNCHGATE_JOURNAL", cfg.JournalPath)
	return cfg, nil
}

// LoadAndValidate is Load followed by Validate.
func LoadAndValidate(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate
// Validate checks the fields the session needs.
func (c Config) Validate() error {
	if c.AppName == "" {
		return errors.New("app_name is required")
	}
	if c.StatusAddr == "" && c.StatusFile == "" {
		return errors.New("one of status_addr or status_file is required")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses fetch_timeout. Empty means no timeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.FetchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("fetch_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("fetch_timeout must not be negative, got %s", d)
	}
	return d, nil
}

// #endregion validate

// #region default-text
// DefaultText builds the gate fallback text, titled with the app name where
// the file leaves titles empty.
func (c Config) DefaultText() gate.DefaultText {
	base := gate.NewDefaultText(c.AppName)
	t := c.Text
	return gate.DefaultText{
		ForceUpdate: gate.ForceUpdateText{
			Title:   or(t.ForceUpdate.Title, base.ForceUpdate.Title),
			Message: t.ForceUpdate.Message,
			Done:    or(t.ForceUpdate.Done, base.ForceUpdate.Done),
		},
		OptionalUpdate: gate.OptionalUpdateText{
			Title:   or(t.OptionalUpdate.Title, base.OptionalUpdate.Title),
			Message: t.OptionalUpdate.Message,
			Cancel:  or(t.OptionalUpdate.Cancel, base.OptionalUpdate.Cancel),
			Done:    or(t.OptionalUpdate.Done, base.OptionalUpdate.Done),
		},
		Notice: gate.NoticeText{
			Title:   or(t.Notice.Title, base.Notice.Title),
			Message: t.Notice.Message,
			Cancel:  or(t.Notice.Cancel, base.Notice.Cancel),
			Done:    or(t.Notice.Done, base.Notice.Done),
		},
		FetchError: gate.FetchErrorText{
			Title: or(t.FetchError.Title, base.FetchError.Title),
			Done:  or(t.FetchError.Done, base.FetchError.Done),
		},
	}
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// #endregion default-text

// Save writes cfg to path as TOML.
func Save(cfg Config, path string) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
