// Package dateutil parses the date formats accepted by the API: plain
// calendar dates ("2024-01-31") and RFC 3339 timestamps.
package dateutil

import (
	"fmt"
	"time"
)

const DateOnly = "2006-01-02"

// Parse accepts a YYYY-MM-DD date or an RFC 3339 timestamp. Plain dates are
// interpreted as midnight UTC.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
}

// ParseOptional returns nil for an empty string.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate renders a timestamp as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateOnly)
}
