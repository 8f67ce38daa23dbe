package tui

import (
	"time"

	"github.com/Veraticus/debt-manager/internal/report"
)

// statusesLoadedMsg carries one evaluation of every limit.
type statusesLoadedMsg struct {
	at       time.Time
	err      error
	statuses []report.LimitStatus
}

// tickMsg triggers the periodic refresh.
type tickMsg time.Time
