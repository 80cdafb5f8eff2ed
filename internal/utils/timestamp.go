package utils

import "time"

// UnixMilliToIsoFormat renders a unix millisecond timestamp as RFC3339 in UTC.
func UnixMilliToIsoFormat(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// NowMilli returns the current unix time in milliseconds.
func NowMilli() int64 {
	return time.Now().UnixMilli()
}
