package listing

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

// Preset is a quick date-range choice on the dashboard
type Preset string

const (
	Today     Preset = "today"
	Yesterday Preset = "yesterday"
	ThisWeek  Preset = "this-week"
	LastWeek  Preset = "last-week"
	ThisMonth Preset = "this-month"
	LastMonth Preset = "last-month"
	ThisYear  Preset = "this-year"
	LastYear  Preset = "last-year"
)

var Presets = []Preset{Today, Yesterday, ThisWeek, LastWeek, ThisMonth, LastMonth, ThisYear, LastYear}

// Range is an inclusive range of calendar days
type Range struct {
	Start time.Time
	End   time.Time
}

// StartParam and EndParam format the range for start_date/end_date
func (r Range) StartParam() string { return r.Start.Format(time.DateOnly) }
func (r Range) EndParam() string   { return r.End.Format(time.DateOnly) }

// Contains reports whether t falls on a day inside the range
func (r Range) Contains(t time.Time) bool {
	d := day(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// ParseRange parses a start/end pair of YYYY-MM-DD dates
func ParseRange(start, end string) (Range, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return Range{}, fmt.Errorf("start date %q: %w", start, err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return Range{}, fmt.Errorf("end date %q: %w", end, err)
	}
	if e.Before(s) {
		return Range{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return Range{Start: s, End: e}, nil
}

// weeks start on Monday
var calendar = &now.Config{WeekStartDay: time.Monday}

// PresetRange resolves a preset relative to t. Weeks start on Monday.
func PresetRange(p Preset, t time.Time) (Range, error) {
	n := calendar.With(t)
	switch p {
	case Today:
		return days(n.BeginningOfDay(), n.EndOfDay()), nil
	case Yesterday:
		y := calendar.With(n.BeginningOfDay().AddDate(0, 0, -1))
		return days(y.BeginningOfDay(), y.EndOfDay()), nil
	case ThisWeek:
		return days(n.BeginningOfWeek(), n.EndOfWeek()), nil
	case LastWeek:
		w := calendar.With(n.BeginningOfWeek().AddDate(0, 0, -7))
		return days(w.BeginningOfWeek(), w.EndOfWeek()), nil
	case ThisMonth:
		return days(n.BeginningOfMonth(), n.EndOfMonth()), nil
	case LastMonth:
		m := calendar.With(n.BeginningOfMonth().AddDate(0, -1, 0))
		return days(m.BeginningOfMonth(), m.EndOfMonth()), nil
	case ThisYear:
		return days(n.BeginningOfYear(), n.EndOfYear()), nil
	case LastYear:
		y := calendar.With(n.BeginningOfYear().AddDate(-1, 0, 0))
		return days(y.BeginningOfYear(), y.EndOfYear()), nil
	}
	return Range{}, fmt.Errorf("unknown date preset %q", p)
}

// days truncates both ends to midnight
func days(start, end time.Time) Range {
	return Range{Start: day(start), End: day(end)}
}

func day(t time.Time) time.Time {
	return calendar.With(t).BeginningOfDay()
}
