package events

import "time"

// DayMillis is the length of a UTC day in milliseconds.
const DayMillis int64 = 86_400_000

// DayFloor truncates a millisecond timestamp to the start of its UTC day.
func DayFloor(ts int64) int64 {
	d := ts / DayMillis
	if ts%DayMillis < 0 {
		d--
	}
	return d * DayMillis
}

// Millis returns t as milliseconds since the Unix epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
