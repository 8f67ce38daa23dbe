package tui

import (
	"context"
	"time"

	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/Veraticus/debt-manager/internal/tui/themes"
)

// Loader evaluates every limit at now.
type Loader func(ctx context.Context, now time.Time) ([]report.LimitStatus, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Loader   Loader
	Clock    func() time.Time
	Interval time.Duration
	Width    int
	Height   int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

const minInterval = time.Second

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Clock:    time.Now,
		Interval: 30 * time.Second,
		Width:    80,
		Height:   24,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithInterval sets the auto-refresh period. Values under a second are
// raised to one second.
func WithInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval < minInterval {
			interval = minInterval
		}
		c.Interval = interval
	}
}

// WithClock overrides the time source used to evaluate limits.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) { c.Clock = clock }
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
