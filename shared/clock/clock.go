package clock

import (
	"fleet/shared/timezone"
	"time"
)

// Clock abstracts the current time so date-sensitive rules (for example
// "pickup must not be in the past") stay deterministic under test.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type appClock struct{}

// New returns a Clock backed by the application timezone.
func New() Clock {
	return &appClock{}
}

func (c *appClock) Now() time.Time {
	return timezone.Now()
}

// Today returns the current calendar date, truncated to midnight in the
// application timezone.
func (c *appClock) Today() time.Time {
	return Truncate(timezone.Now())
}

// Truncate strips the time-of-day component, keeping the calendar date in the
// original location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Fixed returns a Clock pinned to the given instant.
func Fixed(t time.Time) Clock {
	return &fixedClock{at: t}
}

type fixedClock struct {
	at time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.at
}

func (c *fixedClock) Today() time.Time {
	return Truncate(c.at)
}
