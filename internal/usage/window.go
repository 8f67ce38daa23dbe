package usage

import (
	"strings"
	"time"

	"github.com/Veraticus/debt-manager/internal/model"
)

// dateLayouts are the accepted spellings of a limit start or end date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseLimitDate parses a user supplied limit date in loc.
// Unparseable input is reported as an *InvalidLimitError.
func ParseLimitDate(field, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &InvalidLimitError{Field: field, Reason: "is required"}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &InvalidLimitError{Field: field, Reason: "is not a valid date: " + value}
}

// ValidateLimit checks the fields the resolver depends on.
func ValidateLimit(limit *model.CreditLimit) error {
	if limit == nil {
		return &InvalidLimitError{Field: "limit", Reason: "is nil"}
	}
	if limit.StartDate.IsZero() {
		return &InvalidLimitError{LimitID: limit.ID, Field: "start_date", Reason: "is required"}
	}
	if !limit.LimitAmount.IsPositive() {
		return &InvalidLimitError{LimitID: limit.ID, Field: "limit_amount", Reason: "must be positive"}
	}
	if !limit.LimitType.Valid() {
		return &InvalidLimitError{LimitID: limit.ID, Field: "limit_type", Reason: "is unknown: " + string(limit.LimitType)}
	}
	return nil
}

// ResolveWindow returns the [start, end) interval in effect for limit at now.
//
// An explicit EndDate wins over LimitType and includes its whole calendar
// day. Otherwise the end is projected from now: daily and weekly add 24h and
// 7×24h, monthly and yearly run to the next month or year boundary in now's
// location, and custom ends at now. A window whose end is not after its start
// is empty, not an error.
func ResolveWindow(limit *model.CreditLimit, now time.Time) (model.Window, error) {
	if err := ValidateLimit(limit); err != nil {
		return model.Window{}, err
	}

	window := model.Window{Start: limit.StartDate}

	if limit.EndDate != nil {
		window.End = nextMidnight(*limit.EndDate)
		return window, nil
	}

	switch limit.LimitType {
	case model.LimitDaily:
		window.End = now.Add(24 * time.Hour)
	case model.LimitWeekly:
		window.End = now.Add(7 * 24 * time.Hour)
	case model.LimitMonthly:
		// time.Date normalizes month 13 into January of the next year.
		window.End = time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	case model.LimitYearly:
		window.End = time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, now.Location())
	case model.LimitCustom:
		window.End = now
	}

	return window, nil
}

// nextMidnight returns the start of the day after t, in t's location.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
