package utils

import (
	"time"
)

// DateTimeLayout is the human readable layout used for epoch timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

// EpochToTime converts unix seconds to a UTC time.
func EpochToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}

// FormatEpoch renders unix seconds as "YYYY-MM-DD HH:MM:SS" in UTC.
func FormatEpoch(timestamp int64) string {
	return EpochToTime(timestamp).Format(DateTimeLayout)
}

// LookbackWindow returns the [from, to] range covering the last n days up to now.
func LookbackWindow(now time.Time, days int) (time.Time, time.Time) {
	return now.Add(-time.Duration(days) * 24 * time.Hour), now
}
