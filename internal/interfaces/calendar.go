package interfaces

import "time"

// Calendar decides which trading day a moment belongs to.
type Calendar interface {
	// DayKey returns the calendar date of t as YYYY-MM-DD in the exchange timezone.
	DayKey(t time.Time) string

	// IsTradingDay reports whether the exchange is open on t's date.
	IsTradingDay(t time.Time) bool

	// Location is the exchange timezone.
	Location() *time.Location
}
