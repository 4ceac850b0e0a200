package utils

import "time"

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// MonthStart returns the first instant of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// UnixPtr converts provider epoch seconds into a nullable column value; 0 means unset.
func UnixPtr(sec int64) *int64 {
	if sec <= 0 {
		return nil
	}
	return &sec
}
