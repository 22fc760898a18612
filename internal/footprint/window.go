package footprint

import (
	"fmt"
	"time"
)

type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowToday, WindowWeek, WindowMonth:
		return Window(s), nil
	case "":
		return WindowWeek, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Days is the number of calendar days the window spans, today included.
func (w Window) Days() int {
	switch w {
	case WindowToday:
		return 1
	case WindowMonth:
		return 30
	default:
		return 7
	}
}

// Range returns the half-open [from, to) interval for the window ending with
// the day containing now.
func (w Window) Range(now time.Time) (time.Time, time.Time) {
	to := Day(now).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -w.Days())
	return from, to
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
