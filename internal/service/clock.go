package service

import (
	"time"

	"github.com/stepbookstep/server/internal/achievement"
)

// Clock supplies the current instant and the zone in which calendar dates
// (record dates, goal lifetimes) are taken.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

func NewClock(loc *time.Location) Clock {
	return Clock{Location: loc, Now: time.Now}
}

// now is the current instant in UTC, the form timestamps are stored in.
func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

func (c Clock) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// today is the current calendar date in the configured zone.
func (c Clock) today() time.Time {
	return achievement.DayIn(c.now(), c.location())
}
