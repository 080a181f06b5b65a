package models

import "time"

// DateLayout is the wire and storage layout of a tracker day.
const DateLayout = "2006-01-02"

// DailyTracker accumulates nutrient totals for one user on one calendar day.
// A zero ID means the row has not been persisted yet.
type DailyTracker struct {
	ID       int64
	UserID   string
	Date     time.Time
	Calories float64
	Carbs    float64
	Fats     float64
	Proteins float64
}

// DayOf truncates t to its UTC calendar date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
