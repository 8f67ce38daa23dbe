package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/debt-manager/internal/cli"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/report"
	"github.com/charmbracelet/lipgloss"
)

const nameWidth = 20

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	theme := m.config.Theme
	var sections []string

	sections = append(sections, m.renderHeader())

	switch {
	case m.loadedAt.IsZero() && m.lastErr == nil:
		sections = append(sections, theme.StatusPending.Render("Loading limits..."))
	case len(m.statuses) == 0 && m.lastErr == nil:
		sections = append(sections, theme.Subtitle.Render("No credit limits defined. Add one with `debt limits add`."))
	default:
		sections = append(sections, m.renderSummary())
		sections = append(sections, m.renderLimits())
		if len(m.statuses) > 0 {
			sections = append(sections, m.renderDetail(m.statuses[m.cursor]))
		}
	}

	if m.lastErr != nil {
		sections = append(sections, theme.StatusError.Render("Refresh failed: "+m.lastErr.Error()))
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	theme := m.config.Theme
	title := theme.Title.Render(cli.ChartIcon + " Credit usage")

	var state string
	switch {
	case m.loading:
		state = m.spinner.View() + " refreshing"
	case !m.loadedAt.IsZero():
		state = "updated " + m.loadedAt.Format("15:04:05")
	}
	if n := len(m.alerts); n > 0 {
		state += theme.StatusWarning.Render(fmt.Sprintf("  %d alert(s)", n))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", theme.Subtitle.Render(state))
}

func (m Model) renderSummary() string {
	theme := m.config.Theme
	s := m.summary
	line := fmt.Sprintf("Limit %s  Used %s  Available %s  %s",
		cli.FormatMoney(s.TotalLimit),
		cli.FormatMoney(s.TotalUsed),
		cli.FormatMoney(s.TotalAvailable),
		cli.FormatPercent(s.Utilization))
	counts := fmt.Sprintf("%d normal  %d warning  %d danger",
		s.ByStatus[model.StatusNormal],
		s.ByStatus[model.StatusWarning],
		s.ByStatus[model.StatusDanger])
	return theme.RoundedBox.Render(theme.Bold.Render(line) + "\n" + theme.Subtitle.Render(counts))
}

func (m Model) renderLimits() string {
	theme := m.config.Theme
	rows := make([]string, 0, len(m.statuses))
	for i, status := range m.statuses {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		bar := m.bar
		bar.FullColor = string(theme.StatusColor(status.Usage.Status))
		fill := float64(status.Usage.UtilizationPercentage) / 100
		fill = min(max(fill, 0), 1)

		row := fmt.Sprintf("%s%-*s %s %s %s",
			cursor,
			nameWidth, truncate(status.Limit.Name, nameWidth),
			bar.ViewAs(fill),
			theme.StatusStyle(status.Usage.Status).Render(fmt.Sprintf("%5s", cli.FormatPercent(status.Usage.UtilizationPercentage))),
			theme.Subtitle.Render(cli.FormatMoney(status.Usage.UsedAmount)+" / "+cli.FormatMoney(status.Limit.LimitAmount)))
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderDetail(status report.LimitStatus) string {
	theme := m.config.Theme
	limit := status.Limit

	scope := "all categories"
	if limit.Category != "" {
		scope = "category " + limit.Category
	}

	lines := []string{
		theme.Bold.Render(limit.Name) + "  " + theme.StatusStyle(status.Usage.Status).Render(strings.ToUpper(string(status.Usage.Status))),
		fmt.Sprintf("%s limit over %s", limit.LimitType, scope),
		fmt.Sprintf("Window %s to %s", status.Window.Start.Format("2006-01-02 15:04"), status.Window.End.Format("2006-01-02 15:04")),
		fmt.Sprintf("Available %s  (alert at %.0f%%)", cli.FormatMoney(status.Usage.AvailableAmount), limit.Threshold()),
	}
	if status.Usage.Skipped > 0 {
		lines = append(lines, theme.StatusWarning.Render(fmt.Sprintf("%d malformed transaction(s) ignored", status.Usage.Skipped)))
	}
	return theme.RoundedBox.Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
