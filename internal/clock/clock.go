// Package clock resolves civil dates and times in the clinic's fixed timezone.
package clock

import (
	"fmt"
	"time"

	"dialysis-scheduler/internal/model"
)

// DateLayout is the civil date format used for every stored date.
const DateLayout = "2006-01-02"

// TimeLayout is the local time-of-day format stamped on attendance.
const TimeLayout = "15:04:05"

// Clock supplies "now" and "today" in a fixed civil timezone.
type Clock interface {
	Now() time.Time
	Today() string
	NextEligibleDate(set model.WeekdaySet, from string) (string, error)
}

// Civil is the Clock backed by a time.Location.
type Civil struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Clock for the given location using the wall clock.
func New(loc *time.Location) *Civil {
	return &Civil{loc: loc, now: time.Now}
}

// NewFixed creates a Clock that always reports at. Used by tests and replays.
func NewFixed(loc *time.Location, at time.Time) *Civil {
	return &Civil{loc: loc, now: func() time.Time { return at }}
}

// Now returns the current instant in the clinic timezone.
func (c *Civil) Now() time.Time { return c.now().In(c.loc) }

// Today returns the current civil date.
func (c *Civil) Today() string { return c.Now().Format(DateLayout) }

// UntilNextMidnight returns the wait until the next local day boundary.
func (c *Civil) UntilNextMidnight() time.Duration {
	now := c.Now()
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
	return next.Sub(now)
}

// NextEligibleDate returns the first date on or after from that falls on the weekday set.
func (c *Civil) NextEligibleDate(set model.WeekdaySet, from string) (string, error) {
	days, err := Weekdays(set)
	if err != nil {
		return "", err
	}
	start, err := time.ParseInLocation(DateLayout, from, c.loc)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", from, err)
	}
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		for _, wd := range days {
			if d.Weekday() == wd {
				return d.Format(DateLayout), nil
			}
		}
	}
	return "", fmt.Errorf("no eligible date for schedule %q", set)
}

// Weekdays expands a weekday set into its days.
func Weekdays(set model.WeekdaySet) ([]time.Weekday, error) {
	switch set {
	case model.ScheduleMWF:
		return []time.Weekday{time.Monday, time.Wednesday, time.Friday}, nil
	case model.ScheduleTTS:
		return []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}, nil
	}
	return nil, fmt.Errorf("unknown weekday set %q", set)
}

// AddDays shifts a civil date by n days.
func AddDays(date string, n int) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}
