// Package dateutil works on calendar days in the caller's location. Pass
// times already converted to the platform reference timezone.
package dateutil

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// DayValue formats the calendar day of t, e.g. "2026-08-23".
func DayValue(t time.Time) string {
	return t.Format(dayLayout)
}

// WeekValue formats the ISO week of t, e.g. "2026-W34".
func WeekValue(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthValue formats the month of t, e.g. "2026-08".
func MonthValue(t time.Time) string {
	return t.Format("2006-01")
}

func BeginningOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// BeginningOfWeek returns midnight of the Monday opening t's ISO week.
func BeginningOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	return BeginningOfDay(t).AddDate(0, 0, 1-weekday)
}

func BeginningOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// LastNDayValues returns the day values of the n days ending at t's day,
// oldest first.
func LastNDayValues(t time.Time, n int) []string {
	values := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		values = append(values, DayValue(t.AddDate(0, 0, -i)))
	}

	return values
}

// WeekDayValues returns the seven day values of t's ISO week.
func WeekDayValues(t time.Time) []string {
	monday := BeginningOfWeek(t)
	values := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		values = append(values, DayValue(monday.AddDate(0, 0, i)))
	}

	return values
}
