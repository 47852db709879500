package evidence

import "time"

// Accepted year range for any recovered timestamp. Cameras with a dead clock
// report dates around 2000, and nothing in the library postdates 2025.
const (
	MinYear = 2001
	MaxYear = 2025
)

// ValidYear reports whether a year falls inside the accepted range.
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// IsValid applies the validity filter to a candidate timestamp. The exact
// value 2000-01-01 00:00:00 is rejected unconditionally as the placeholder
// written by cameras that lost their clock, independent of the range check.
func IsValid(t time.Time) bool {
	if t.Year() == 2000 && t.Month() == time.January && t.Day() == 1 &&
		t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return false
	}
	return ValidYear(t.Year())
}
