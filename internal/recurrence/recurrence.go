// Package recurrence maps a recurrence rule and an anchor date to the next
// occurrence date. Pure calendar arithmetic, no I/O.
package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Pattern is the base unit a series repeats on.
type Pattern string

const (
	PatternDaily    Pattern = "daily"
	PatternWeekly   Pattern = "weekly"
	PatternBiweekly Pattern = "biweekly"
	PatternMonthly  Pattern = "monthly"
	PatternCustom   Pattern = "custom"
)

// ParsePattern validates a raw pattern string from the API layer.
func ParsePattern(raw string) (Pattern, error) {
	switch p := Pattern(strings.ToLower(strings.TrimSpace(raw))); p {
	case PatternDaily, PatternWeekly, PatternBiweekly, PatternMonthly, PatternCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown recurrence pattern %q", raw)
	}
}

// Next returns the occurrence that follows from. Monthly uses ordinary
// calendar addition, so a Jan 31 anchor rolls into early March rather than
// clamping to Feb 28. Unknown and custom patterns step by interval days.
// interval must be positive; that is a caller precondition, not checked here.
func Next(pattern Pattern, interval int, from time.Time) time.Time {
	switch pattern {
	case PatternDaily:
		return from.AddDate(0, 0, interval)
	case PatternWeekly:
		return from.AddDate(0, 0, 7*interval)
	case PatternBiweekly:
		return from.AddDate(0, 0, 14*interval)
	case PatternMonthly:
		return from.AddDate(0, interval, 0)
	default:
		return from.AddDate(0, 0, interval)
	}
}
