package services

import (
	"time"

	"github.com/chippom/ChipsGIFs/internal/common"
	"github.com/chippom/ChipsGIFs/internal/timex"
)

// Clock stamps rows with a UTC time and a display string in the gallery's
// home time zone.
type Clock struct {
	Now func() time.Time
	Loc *time.Location
}

// NewClock returns a wall clock rendering in loc.
func NewClock(loc *time.Location) Clock {
	return Clock{Now: time.Now, Loc: loc}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

// Stamp returns the current UTC time and its display rendering.
func (c Clock) Stamp() (time.Time, string) {
	t := c.now()
	return t, timex.DisplayTime(t, c.Loc, common.DisplayTimeLayout)
}
