// Package timeutil converts between calendar time and the epoch
// millisecond instants the task model is built on, and parses the
// date/time forms the CLI accepts.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avoronkov/tasktracker/internal/models"
)

const (
	DateFormat     = "02-01-2006"
	ClockFormat    = "15:04"
	DateTimeFormat = "02-01-2006 15:04"
)

// ToMillis converts an instant to epoch milliseconds.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds back to a UTC instant.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Millis returns a pointer to the epoch milliseconds of t, for the
// optional window fields of a task.
func Millis(t time.Time) *int64 {
	ms := ToMillis(t)
	return &ms
}

// DurationMillis converts a duration to whole milliseconds. Plan shifts
// are stored this way.
func DurationMillis(d time.Duration) int64 {
	return d.Milliseconds()
}

// ShiftMillis returns t+d as epoch milliseconds.
func ShiftMillis(t time.Time, d time.Duration) int64 {
	return ToMillis(t.Add(d))
}

// DayRange returns the [midnight, next midnight) range containing t.
func DayRange(t time.Time) models.TimeRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return models.TimeRange{ToMillis(start), ToMillis(start.AddDate(0, 0, 1))}
}

// Today returns the current day at midnight.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Now returns the current time truncated to whole seconds.
func Now() time.Time {
	return time.Now().Truncate(time.Second)
}

var (
	relativeDateRe = regexp.MustCompile(`^today(([+-])([0-9]+))?$`)
	relativeTimeRe = regexp.MustCompile(`^now(([+-])([0-9]+))?$`)
)

// ParseDate parses "DD-MM-YYYY" or the relative form "today", "today+N",
// "today-N" (N in days).
func ParseDate(arg string) (time.Time, error) {
	if t, err := time.Parse(DateFormat, arg); err == nil {
		return t, nil
	}

	if m := relativeDateRe.FindStringSubmatch(arg); m != nil {
		day := Today()
		if m[1] == "" {
			return day, nil
		}
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", arg, err)
		}
		if m[2] == "-" {
			n = -n
		}
		return day.AddDate(0, 0, n), nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q (expected DD-MM-YYYY or today±N)", arg)
}

// ParseClock parses "HH:MM" or the relative form "now", "now+N", "now-N"
// (N in hours), returning the offset from midnight.
func ParseClock(arg string) (time.Duration, error) {
	if t, err := time.Parse(ClockFormat, arg); err == nil {
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
	}

	if m := relativeTimeRe.FindStringSubmatch(arg); m != nil {
		now := Now()
		offset := now.Sub(Today())
		if m[1] == "" {
			return offset, nil
		}
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", arg, err)
		}
		if m[2] == "-" {
			n = -n
		}
		return offset + time.Duration(n)*time.Hour, nil
	}

	return 0, fmt.Errorf("invalid time %q (expected HH:MM or now±N)", arg)
}

// ParseInstantArg parses a single "<date>" or "<date> <time>" argument
// into epoch milliseconds.
func ParseInstantArg(arg string) (int64, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), " ", 2)
	if len(parts) == 1 {
		return ParseInstant(parts[0], "")
	}
	return ParseInstant(parts[0], parts[1])
}

var shiftRe = regexp.MustCompile(`^(-?[0-9]+)(d|w)$`)

// ParseShift parses a signed interval into milliseconds: "3d", "-1w", or
// any Go duration ("72h", "90m").
func ParseShift(arg string) (int64, error) {
	if m := shiftRe.FindStringSubmatch(arg); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q: %w", arg, err)
		}
		days := n
		if m[2] == "w" {
			days = n * 7
		}
		return days * 24 * int64(time.Hour/time.Millisecond), nil
	}
	d, err := time.ParseDuration(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q (expected Nd, Nw or a duration like 72h)", arg)
	}
	return DurationMillis(d), nil
}

// ParseInstant parses "<date>" or "<date> <time>" into epoch
// milliseconds, accepting the relative forms of ParseDate and ParseClock.
func ParseInstant(dateArg, timeArg string) (int64, error) {
	day, err := ParseDate(dateArg)
	if err != nil {
		return 0, err
	}
	if timeArg == "" {
		return ToMillis(day), nil
	}
	offset, err := ParseClock(timeArg)
	if err != nil {
		return 0, err
	}
	return ToMillis(day.Add(offset)), nil
}
