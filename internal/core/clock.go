package core

import (
	"fmt"
	"strings"
	"time"
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999Z07",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads the timestamp formats the API emits.
//
// Values carrying a zone or offset are converted into loc; values without one
// are taken as wall-clock time in loc. ok is false when nothing matches.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate reads a "YYYY-MM-DD" calendar date, ignoring any time suffix.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) > 10 {
		raw = raw[:10]
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimeOfDay is minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" and "HH:MM:SS".
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	var h, m, s int
	var err error
	switch len(raw) {
	case 5:
		_, err = fmt.Sscanf(raw, "%02d:%02d", &h, &m)
	case 8:
		_, err = fmt.Sscanf(raw, "%02d:%02d:%02d", &h, &m, &s)
	default:
		return 0, ErrInvalidTime
	}
	if err != nil || h < 0 || h > 23 || m < 0 || m > 59 || s < 0 || s > 59 {
		return 0, ErrInvalidTime
	}
	return TimeOfDay(h*60 + m), nil
}

// NormalizeTime turns "HH:MM" into "HH:MM:00"; other inputs pass through.
func NormalizeTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == 5 {
		return raw + ":00"
	}
	return raw
}
