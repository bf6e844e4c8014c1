package util

import "time"

// DayFormat is the canonical key format for per-day prices and targets.
const DayFormat = "2006-01-02"

// DayKey formats t as a UTC calendar-day key.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}
