package finance

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("invalid window")

// Window is a calendar month used to scope budget aggregation.
type Window struct {
	Year  int
	Month time.Month
}

// NewWindow builds a window from optional year/month values. A zero year or
// month falls back to the corresponding part of now.
func NewWindow(year, month int, now time.Time) (Window, error) {
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return Window{}, fmt.Errorf("%w: month %d", ErrInvalidWindow, month)
	}
	if year < 1 || year > 9999 {
		return Window{}, fmt.Errorf("%w: year %d", ErrInvalidWindow, year)
	}
	return Window{Year: year, Month: time.Month(month)}, nil
}

// CurrentWindow returns the window containing now.
func CurrentWindow(now time.Time) Window {
	return Window{Year: now.Year(), Month: now.Month()}
}

// Bounds returns [first day of month, first day of next month) in UTC.
func (w Window) Bounds() (time.Time, time.Time) {
	start := time.Date(w.Year, w.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the window. Only the calendar date
// of t is considered so entries stored in other zones are not shifted.
func (w Window) Contains(t time.Time) bool {
	return t.Year() == w.Year && t.Month() == w.Month
}

// Previous returns the month before w.
func (w Window) Previous() Window {
	start, _ := w.Bounds()
	p := start.AddDate(0, -1, 0)
	return Window{Year: p.Year(), Month: p.Month()}
}

func (w Window) String() string {
	return fmt.Sprintf("%04d-%02d", w.Year, int(w.Month))
}
