package shared

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate reads YYYY-MM-DD, or an RFC3339 timestamp whose calendar date
// is kept. The result is midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(DateLayout, value)
}
