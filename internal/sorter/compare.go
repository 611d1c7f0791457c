package sorter

import (
	"cmp"
	"errors"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822,
}

// CompareNumeric orders cells by their leading integer. Cells without one
// sort after every number, by raw text.
func CompareNumeric(a, b string) int {
	x, okA := LeadingInt(a)
	y, okB := LeadingInt(b)
	return compareParsed(okA, okB, func() int { return cmp.Compare(x, y) }, a, b)
}

// CompareDate orders cells by calendar time. Unparsable cells sort after
// every valid date, by raw text.
func CompareDate(a, b string) int {
	x, okA := ParseDate(a)
	y, okB := ParseDate(b)
	return compareParsed(okA, okB, func() int { return x.Compare(y) }, a, b)
}

func compareParsed(okA, okB bool, parsed func() int, a, b string) int {
	switch {
	case okA && okB:
		return parsed()
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// LeadingInt parses an optional sign and the digits that follow it, ignoring
// surrounding space and any trailing text ("12 wins" is 12). Digit runs too
// long for an int64 clamp to its range.
func LeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return n, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDate tries each known layout in turn.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
