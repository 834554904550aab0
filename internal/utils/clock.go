package utils

import (
	"fmt"
	"time"
	"word-progress/internal/models"
)

// Clock is the single source of "now" and "today" for progression logic.
type Clock interface {
	Now() time.Time
	Today() models.Date
	Location() *time.Location
}

type SystemClock struct {
	loc *time.Location
}

func NewSystemClock(timezone string) (*SystemClock, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &SystemClock{loc: loc}, nil
}

func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *SystemClock) Today() models.Date {
	return models.DateOf(c.Now())
}

func (c *SystemClock) Location() *time.Location {
	return c.loc
}

// FixedClock always reports the same instant. Used by tests and local replays.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time          { return c.At }
func (c FixedClock) Today() models.Date      { return models.DateOf(c.At) }
func (c FixedClock) Location() *time.Location { return c.At.Location() }
