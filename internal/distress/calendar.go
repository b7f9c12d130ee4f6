package distress

import (
	"fmt"
	"time"
)

// CalendarQuarters is the number of quarters every calendar must define
const CalendarQuarters = 8

// periodLayout is the date layout of QuarterTarget.PeriodEnd
const periodLayout = "2006-01-02"

// Calendar is the fixed, oldest-first list of quarters a scoring run covers
type Calendar struct {
	targets []QuarterTarget
	latest  time.Time
}

// NewCalendar validates targets and builds a Calendar.
// Targets must be exactly CalendarQuarters entries in strictly increasing date order.
func NewCalendar(targets []QuarterTarget) (Calendar, error) {
	if len(targets) != CalendarQuarters {
		return Calendar{}, fmt.Errorf("calendar needs %d quarters, got %d", CalendarQuarters, len(targets))
	}

	seen := make(map[QuarterLabel]bool, len(targets))
	var prev time.Time
	for i, t := range targets {
		if t.Label == "" {
			return Calendar{}, fmt.Errorf("quarter %d: empty label", i)
		}
		if seen[t.Label] {
			return Calendar{}, fmt.Errorf("quarter %d: duplicate label %q", i, t.Label)
		}
		seen[t.Label] = true

		end, err := time.Parse(periodLayout, t.PeriodEnd)
		if err != nil {
			return Calendar{}, fmt.Errorf("quarter %s: parse period end: %w", t.Label, err)
		}
		if i > 0 && !end.After(prev) {
			return Calendar{}, fmt.Errorf("quarter %s: period end %s is not after %s",
				t.Label, t.PeriodEnd, prev.Format(periodLayout))
		}
		prev = end
	}

	cp := make([]QuarterTarget, len(targets))
	copy(cp, targets)
	return Calendar{targets: cp, latest: prev}, nil
}

// DefaultCalendar covers Q3 2022 through Q2 2024
func DefaultCalendar() Calendar {
	cal, err := NewCalendar([]QuarterTarget{
		{Label: "Q3 2022", PeriodEnd: "2022-09-30"},
		{Label: "Q4 2022", PeriodEnd: "2022-12-31"},
		{Label: "Q1 2023", PeriodEnd: "2023-03-31"},
		{Label: "Q2 2023", PeriodEnd: "2023-06-30"},
		{Label: "Q3 2023", PeriodEnd: "2023-09-30"},
		{Label: "Q4 2023", PeriodEnd: "2023-12-31"},
		{Label: "Q1 2024", PeriodEnd: "2024-03-31"},
		{Label: "Q2 2024", PeriodEnd: "2024-06-30"},
	})
	if err != nil {
		panic(fmt.Sprintf("default calendar: %v", err))
	}
	return cal
}

// Targets returns a copy of the calendar entries, oldest first
func (c Calendar) Targets() []QuarterTarget {
	out := make([]QuarterTarget, len(c.targets))
	copy(out, c.targets)
	return out
}

// AssessmentDate is the period end of the most recent quarter
func (c Calendar) AssessmentDate() time.Time {
	return c.latest
}

// IsZero reports whether the calendar was never initialized
func (c Calendar) IsZero() bool {
	return len(c.targets) == 0
}
