package service

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// dateIn returns the calendar date of t in loc as UTC midnight, which is how
// DATE columns come back from the driver.
func dateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddCalendarYear moves a date one calendar year forward. Feb 29 lands on
// Feb 28 instead of rolling into March.
func AddCalendarYear(t time.Time) time.Time {
	y, m, d := t.Date()
	lastDay := time.Date(y+1, m+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	h, mi, s := t.Clock()
	return time.Date(y+1, m, d, h, mi, s, t.Nanosecond(), t.Location())
}
