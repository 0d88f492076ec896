// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/highlight"
	"github.com/xonecas/annotator/internal/text"
)

// Config is the root configuration structure.
type Config struct {
	UI       UIConfig       `toml:"ui"`
	Search   SearchConfig   `toml:"search"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Entities []EntityConfig `toml:"entities"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// Theme is the Chroma theme the document colors are derived from via
	// highlight.ThemePalette. Defaults to "vulcan" if unset.
	Theme         string  `toml:"theme"`
	SelectColor   string  `toml:"select_color"`
	SelectOpacity float64 `toml:"select_opacity"`
	LineNumbers   *bool   `toml:"line_numbers"`
	WheelLines    int     `toml:"wheel_lines"`
	Mode          string  `toml:"mode"`
}

// ThemeOrDefault returns the configured theme or "vulcan" if unset.
func (u UIConfig) ThemeOrDefault() string {
	if u.Theme == "" {
		return "vulcan"
	}
	return u.Theme
}

// ShowLineNumbers reports whether the gutter is drawn. Defaults to true.
func (u UIConfig) ShowLineNumbers() bool {
	return u.LineNumbers == nil || *u.LineNumbers
}

// WheelLinesOrDefault returns the lines scrolled per wheel notch, 3 if unset.
func (u UIConfig) WheelLinesOrDefault() int {
	if u.WheelLines <= 0 {
		return 3
	}
	return u.WheelLines
}

// SearchConfig holds search prompt settings.
type SearchConfig struct {
	MinLength int `toml:"min_length"`
}

// MinLengthOrDefault returns the shortest query searched as you type.
func (s SearchConfig) MinLengthOrDefault() int {
	if s.MinLength <= 0 {
		return 1
	}
	return s.MinLength
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	// Path is the SQLite database. Defaults to annotator.db in DataDir.
	Path string `toml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LevelOrDefault parses the configured level, "info" if unset.
func (l LogConfig) LevelOrDefault() zerolog.Level {
	lvl, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// EntityConfig is a highlight schema declared in the config file. The
// store is seeded with these on startup.
type EntityConfig struct {
	ID      string  `toml:"id"`
	Label   string  `toml:"label"`
	Mode    string  `toml:"mode"`
	Color   string  `toml:"color"`
	Opacity float64 `toml:"opacity"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{}
}

// Load reads configuration from a TOML file and applies environment
// variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.UI.SelectColor != "" {
		if _, _, err := highlight.ParseColor(c.UI.SelectColor); err != nil {
			errs = append(errs, fmt.Errorf("ui.select_color=%q is invalid: %v", c.UI.SelectColor, err))
		}
	}
	if c.UI.SelectOpacity < 0 || c.UI.SelectOpacity > 1 {
		errs = append(errs, fmt.Errorf("ui.select_opacity=%v must be between 0.0 and 1.0", c.UI.SelectOpacity))
	}
	if c.UI.Mode != "" {
		if _, err := text.ParseMode(c.UI.Mode); err != nil {
			errs = append(errs, fmt.Errorf("ui.mode: %w", err))
		}
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level=%q is invalid", c.Log.Level))
		}
	}

	seen := make(map[string]bool)
	for i, e := range c.Entities {
		errs = append(errs, validateEntity(i, e)...)
		if seen[e.ID] {
			errs = append(errs, fmt.Errorf("entities[%d].id=%q is duplicated", i, e.ID))
		}
		seen[e.ID] = true
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func validateEntity(i int, e EntityConfig) []error {
	var errs []error
	if !text.IsTagID(e.ID) {
		errs = append(errs, fmt.Errorf("entities[%d].id=%q is not a valid tag id", i, e.ID))
	}
	switch annotation.Mode(e.Mode) {
	case "", annotation.ModeBackground, annotation.ModeUnderline, annotation.ModeFocus:
	default:
		errs = append(errs, fmt.Errorf("entities[%d].mode=%q must be background, underline or focus", i, e.Mode))
	}
	if e.Color != "" {
		if _, _, err := highlight.ParseColor(e.Color); err != nil {
			errs = append(errs, fmt.Errorf("entities[%d].color=%q is invalid: %v", i, e.Color, err))
		}
	}
	if e.Opacity < 0 || e.Opacity > 1 {
		errs = append(errs, fmt.Errorf("entities[%d].opacity=%v must be between 0.0 and 1.0", i, e.Opacity))
	}
	return errs
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"ANNOTATOR_DB", func(v string) {
			if v != "" {
				cfg.Store.Path = v
			}
		}},
		{"ANNOTATOR_THEME", func(v string) {
			if v != "" {
				cfg.UI.Theme = v
			}
		}},
		{"ANNOTATOR_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the annotator data directory (~/.config/annotator).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "annotator"), nil
}

// DefaultPath returns ~/.config/annotator/config.toml.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// StorePath returns the configured database path, or annotator.db in
// the data directory.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "annotator.db"), nil
}
