package dateutil

import "time"

// NextDailyReset returns the first instant strictly after now at which the UTC
// clock reads hour:00.
func NextDailyReset(now time.Time, hour int) time.Time {
	now = now.UTC()
	reset := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 1)
	}

	return reset
}

// NextWeeklyReset returns the first instant strictly after now that falls on
// weekday at hour:00 UTC.
func NextWeeklyReset(now time.Time, weekday time.Weekday, hour int) time.Time {
	now = now.UTC()
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	reset := time.Date(now.Year(), now.Month(), now.Day()+days, hour, 0, 0, 0, time.UTC)
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 7)
	}

	return reset
}
