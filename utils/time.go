package utils

import (
	"fmt"
	"time"
)

const (
	dbDateTimeLayout = "2006-01-02 15:04:05"
)

// Clock 현재 시각 공급자 (테스트에서 교체)
type Clock func() time.Time

// Now returns the current UTC time truncated to whole seconds.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// FormatDateTimeForDB formats a time for VARCHAR timestamp columns (UTC).
func FormatDateTimeForDB(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dbDateTimeLayout)
}

// NullableDateTime 빈 시간은 NULL 로 저장
func NullableDateTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return FormatDateTimeForDB(t)
}

// ParseDBDate parses timestamps retrieved from the database. Empty means zero time.
func ParseDBDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	if ts, err := time.ParseInLocation(dbDateTimeLayout, value, time.UTC); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unsupported db time format: %s", value)
}

// NowMillis 현재 unix 밀리초
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
