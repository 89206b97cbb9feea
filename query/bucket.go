package query

import (
	"fmt"
	"time"
)

// BucketDate truncates an ISO-8601 date string to the start of its year,
// quarter, month or day and re-expands it to a full UTC timestamp, e.g.
// "2025-03-17T10:00:00Z" at LevelMonth becomes "2025-03-01T00:00:00.000Z".
//
// Non-string values, strings that do not start with a date of the needed
// precision and unknown levels are returned unchanged.
func BucketDate(v interface{}, level string) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}

	switch level {
	case LevelYear:
		if _, err := time.Parse("2006", prefix(s, 4)); err != nil {
			return v
		}
		return s[:4] + "-01-01T00:00:00.000Z"

	case LevelQuarter:
		t, err := time.Parse("2006-01", prefix(s, 7))
		if err != nil {
			return v
		}
		first := (int(t.Month())-1)/3*3 + 1
		return fmt.Sprintf("%s-%02d-01T00:00:00.000Z", s[:4], first)

	case LevelMonth:
		if _, err := time.Parse("2006-01", prefix(s, 7)); err != nil {
			return v
		}
		return s[:7] + "-01T00:00:00.000Z"

	case LevelDay:
		if _, err := time.Parse("2006-01-02", prefix(s, 10)); err != nil {
			return v
		}
		return s[:10] + "T00:00:00.000Z"

	default:
		return v
	}
}

// prefix returns the first n bytes of s, or "" when s is shorter.
func prefix(s string, n int) string {
	if len(s) < n {
		return ""
	}
	return s[:n]
}
