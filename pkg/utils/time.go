package utils

import "time"

// The groups service carries all timestamps as epoch milliseconds.

func EpochMillisToTime(millis int64) time.Time {
	return time.UnixMilli(millis)
}

func FormatEpochMillis(millis int64) string {
	if millis == 0 {
		return "-"
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05 MST")
}
