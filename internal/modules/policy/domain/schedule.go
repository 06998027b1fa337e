package domain

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Schedule gates a rule by time of day. The zero value, and any schedule whose
// bounds fail to parse, is always active.
type Schedule struct {
	Always bool   `json:"always"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// Active reports whether the schedule covers t. Bounds are read in UTC.
func (s Schedule) Active(t time.Time) bool {
	if s.Always {
		return true
	}
	start, err := ParseClock(s.Start)
	if err != nil {
		return true
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return true
	}
	return InWindow(t.UTC(), start, end)
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", v, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	return h*60 + m, nil
}

// InWindow reports whether t's time of day lies in [start, end). When
// start > end the window spans midnight; start == end covers the whole day.
func InWindow(t time.Time, start, end int) bool {
	minute := t.Hour()*60 + t.Minute()
	start, end = start%minutesPerDay, end%minutesPerDay

	switch {
	case start == end:
		return true
	case start < end:
		return minute >= start && minute < end
	default:
		return minute >= start || minute < end
	}
}
