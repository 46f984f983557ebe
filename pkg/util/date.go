package util

import (
	"strconv"
	"time"
)

// YMD is the compact date layout used by the stock host's paths.
const YMD = "20060102"

// ParseTime accepts YYYYMMDD, YYYY-MM-DD, RFC3339 and unix seconds.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if len(s) == 8 {
		if t, err := time.Parse(YMD, s); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// FormatYMD renders t as YYYYMMDD.
func FormatYMD(t time.Time) string {
	return t.Format(YMD)
}

// ChartRange returns the [end-days, end] window as YYYYMMDD strings.
func ChartRange(end time.Time, days int) (string, string) {
	if days <= 0 {
		days = 365
	}
	return FormatYMD(end.AddDate(0, 0, -days)), FormatYMD(end)
}
