// Package timeparsing provides layered parsing for the time expressions
// accepted on the command line.
//
// Two layers:
//  1. Compact duration windows (24h, 2d, 1w) for --within
//  2. Natural language points in time (yesterday, last monday) for --since
package timeparsing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// compactDurationRe matches compact duration patterns: (\d+)([hdw])
// Examples: 6h, 1d, 2w
var compactDurationRe = regexp.MustCompile(`^(\d+)([hdw])$`)

// ParseWindow parses a lookback window for recency queries.
//
// Accepts compact durations (6h, 1d, 2w) and anything Go's
// time.ParseDuration understands (90m, 1h30m). Days are 24 hours and
// weeks 7 days; calendar-aware months are deliberately not offered for a
// lookback window.
func ParseWindow(s string) (time.Duration, error) {
	if matches := compactDurationRe.FindStringSubmatch(s); matches != nil {
		amount, err := strconv.Atoi(matches[1])
		if err != nil {
			// Should not happen given the regex ensures digits
			return 0, fmt.Errorf("invalid duration amount: %q", matches[1])
		}
		switch matches[2] {
		case "h":
			return time.Duration(amount) * time.Hour, nil
		case "d":
			return time.Duration(amount) * 24 * time.Hour, nil
		case "w":
			return time.Duration(amount) * 7 * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("not a duration: %q (try 24h, 2d, 1w)", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %q", s)
	}
	return d, nil
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}
