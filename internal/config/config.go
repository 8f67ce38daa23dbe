// Package config loads application settings from viper, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultDatabasePath    = "$HOME/.local/share/debt/debt.db"
	DefaultRefreshInterval = 30 * time.Second
	minRefreshInterval     = time.Second
)

// Config holds the settings shared by every command.
type Config struct {
	Location        *time.Location
	DatabasePath    string
	Timezone        string
	RefreshInterval time.Duration
}

// LoadDotEnv loads variables from a .env file without overriding anything
// already set in the process environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(ExpandPath(path)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("engine.timezone", "Local")
	v.SetDefault("watch.interval", DefaultRefreshInterval)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the application settings from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath:    ExpandPath(v.GetString("database.path")),
		Timezone:        v.GetString("engine.timezone"),
		RefreshInterval: v.GetDuration("watch.interval"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = ExpandPath(DefaultDatabasePath)
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.RefreshInterval < minRefreshInterval {
		return nil, fmt.Errorf("%w: watch.interval must be at least %s", common.ErrInvalidConfig, minRefreshInterval)
	}

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: engine.timezone %q: %v", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
