package util

import (
	"fmt"
	"strings"
	"time"

	"dexrun/internal/sorter"
)

// FormatTimestamp formats a timestamp cell for display, leaving text it
// cannot parse untouched.
func FormatTimestamp(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "—"
	}
	t, ok := sorter.ParseDate(ts)
	if !ok {
		return ts
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("Jan 02, 2006")
	}
	return t.Format("Jan 02, 2006 15:04")
}

// FormatTimestampHuman formats a timestamp with humanized relative display.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatTimestampHuman(ts string, now time.Time) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "—"
	}
	t, ok := sorter.ParseDate(ts)
	if !ok {
		return ts
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(day).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatPercent renders a 0-100 share with two decimals.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
