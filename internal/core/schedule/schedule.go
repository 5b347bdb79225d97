// Package schedule implements the weekly due-time predicate and period dedup math
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time within a day
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Seconds returns the offset from midnight in seconds
func (t TimeOfDay) Seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }

// String renders HH:MM:SS
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Spec is one weekly occurrence: a weekday plus a time of day
type Spec struct {
	Weekday time.Weekday
	At      TimeOfDay
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseWeekday resolves a weekday name case-insensitively
func ParseWeekday(name string) (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return d, nil
}

// ParseTimeOfDay parses HH:MM:SS with hour 0-23 and minute/second 0-59.
// Exactly three colon-separated integer fields are required.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("time %q is not HH:MM:SS", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("time %q is not HH:MM:SS", s)
		}
		nums[i] = n
	}
	t := TimeOfDay{Hour: nums[0], Minute: nums[1], Second: nums[2]}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q out of range", s)
	}
	return t, nil
}

// Due reports whether the spec is satisfied at now.
// The comparison is >= on the time of day, not equality, because callers poll
// on a cadence coarser than one second and must not miss the exact instant.
func Due(now time.Time, spec Spec) bool {
	if now.Weekday() != spec.Weekday {
		return false
	}
	sod := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return sod >= spec.At.Seconds()
}

// PeriodOf encodes now as a year-week identifier that changes exactly once per
// calendar week. Weeks start on Sunday; days before the first Sunday of the
// year fall into week 00 (strftime %U semantics, so persisted ids stay
// comparable with ones written by earlier agents).
func PeriodOf(now time.Time) string {
	yday := now.YearDay() - 1          // zero-based day of year
	wday := int(now.Weekday())         // Sunday == 0
	week := (yday + 7 - wday) / 7
	return fmt.Sprintf("%04d-W%02d", now.Year(), week)
}

// ShouldFire reports whether a weekly fire is owed: the spec is due and the
// current period has not been consumed yet. Callers must persist PeriodOf(now)
// as the new consumed period on a true result.
func ShouldFire(now time.Time, spec Spec, lastFiredPeriod string) bool {
	return Due(now, spec) && PeriodOf(now) != lastFiredPeriod
}
