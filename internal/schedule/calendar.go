// Package schedule maps wall-clock time onto exchange trading days.
package schedule

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"smartob-trader/internal/interfaces"
)

const dayLayout = "2006-01-02"

// DayClock derives trading days from an exchange calendar. Without a
// calendar it uses UTC and treats every day as a trading day, which suits
// round-the-clock FX and metals.
type DayClock struct {
	cal *calendar.Calendar
	loc *time.Location
}

var _ interfaces.Calendar = (*DayClock)(nil)

// NewDayClock looks up the calendar for an ISO 10383 MIC such as "xnys" or
// "xnse". An empty or unknown MIC gives the UTC, always-open clock.
func NewDayClock(mic string) *DayClock {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		return &DayClock{loc: time.UTC}
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil || cal.Loc == nil {
		return &DayClock{loc: time.UTC}
	}
	return &DayClock{cal: cal, loc: cal.Loc}
}

// DayKey formats t's date in the clock's timezone.
func (c *DayClock) DayKey(t time.Time) string {
	return t.In(c.loc).Format(dayLayout)
}

// IsTradingDay defers to the exchange calendar when one is loaded.
func (c *DayClock) IsTradingDay(t time.Time) bool {
	if c.cal == nil {
		return true
	}
	return c.cal.IsBusinessDay(t.In(c.loc))
}

func (c *DayClock) Location() *time.Location {
	return c.loc
}

// HasCalendar reports whether an exchange calendar backs the clock.
func (c *DayClock) HasCalendar() bool {
	return c.cal != nil
}

// PreviousDay returns the date key before day, or "" when day is malformed.
func PreviousDay(day string) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dayLayout)
}
