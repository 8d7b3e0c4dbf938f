package config

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a day, parsed from "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an "HH:MM" string. The empty string is not a valid
// time of day; callers treat it as "unset" before parsing.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var td TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &td.Hour, &td.Minute); err != nil {
		return td, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if td.Hour < 0 || td.Hour > 23 || td.Minute < 0 || td.Minute > 59 {
		return td, fmt.Errorf("time of day %q out of range", s)
	}
	return td, nil
}

// On returns the instant at this time of day on the given date, in the
// date's location.
func (td TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), td.Hour, td.Minute, 0, 0, date.Location())
}

// MinuteOfDay returns minutes since midnight, for interval comparisons.
func (td TimeOfDay) MinuteOfDay() int {
	return td.Hour*60 + td.Minute
}

func (td TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", td.Hour, td.Minute)
}

// ReminderTimeOfDay returns the canonical local fire time for due reminders,
// falling back to 09:00 when the configured value is missing or malformed.
func (n NotificationsConfig) ReminderTimeOfDay() TimeOfDay {
	if n.ReminderTime == "" {
		return TimeOfDay{Hour: 9}
	}
	td, err := ParseTimeOfDay(n.ReminderTime)
	if err != nil {
		return TimeOfDay{Hour: 9}
	}
	return td
}

// QuietHours returns the configured quiet-hours bounds. ok is false unless
// both bounds are present and valid; quiet hours apply only then.
func (n NotificationsConfig) QuietHours() (start, end TimeOfDay, ok bool) {
	if n.QuietHoursStart == "" || n.QuietHoursEnd == "" {
		return start, end, false
	}
	start, err := ParseTimeOfDay(n.QuietHoursStart)
	if err != nil {
		return start, end, false
	}
	end, err = ParseTimeOfDay(n.QuietHoursEnd)
	if err != nil {
		return start, end, false
	}
	return start, end, true
}
