package util

import "time"

// DateLayout is the calendar-date layout used by observation feeds.
const DateLayout = "2006-01-02"

// ParseTime accepts a bare observation date or an RFC3339 timestamp. Returns (t, true) if either worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	// RFC3339Nano also accepts timestamps without fractional seconds
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
