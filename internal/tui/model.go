// Package tui implements the live credit usage dashboard.
package tui

import (
	"context"
	"time"

	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model holds the dashboard state.
type Model struct {
	ctx      context.Context
	loadedAt time.Time
	lastErr  error
	config   Config
	keymap   KeyMap
	statuses []report.LimitStatus
	alerts   []report.LimitStatus
	summary  report.Summary
	help     help.Model
	spinner  spinner.Model
	bar      progress.Model
	cursor   int
	width    int
	height   int
	loading  bool
	quitting bool
}

// New creates a dashboard that evaluates limits through loader.
func New(ctx context.Context, loader Loader, opts ...Option) Model {
	cfg := defaultConfig()
	cfg.Loader = loader
	for _, opt := range opts {
		opt(&cfg)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cfg.Theme.StatusPending

	m := Model{
		ctx:     ctx,
		config:  cfg,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: s,
		bar:     progress.New(progress.WithoutPercentage()),
		width:   cfg.Width,
		height:  cfg.Height,
		loading: true,
	}
	m.resize()
	return m
}

// Init starts the first load and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), m.tick())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		if m.loading {
			return m, m.tick()
		}
		m.loading = true
		return m, tea.Batch(m.load(), m.tick(), m.spinner.Tick)

	case statusesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// Keep showing the last good evaluation.
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		m.loadedAt = msg.at
		m.statuses = msg.statuses
		m.alerts = report.Alerts(msg.statuses)
		m.summary = report.Summarize(msg.statuses)
		if m.cursor >= len(m.statuses) {
			m.cursor = max(len(m.statuses)-1, 0)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.load(), m.spinner.Tick)

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.statuses)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) resize() {
	m.help.Width = m.width
	m.bar.Width = min(max(m.width-50, 10), 40)
}

func (m Model) load() tea.Cmd {
	ctx, loader, clock := m.ctx, m.config.Loader, m.config.Clock
	return func() tea.Msg {
		now := clock()
		statuses, err := loader(ctx, now)
		return statusesLoadedMsg{at: now, statuses: statuses, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.config.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Statuses returns the last successful evaluation.
func (m Model) Statuses() []report.LimitStatus {
	return m.statuses
}

// Err returns the error from the most recent load, if it failed.
func (m Model) Err() error {
	return m.lastErr
}
