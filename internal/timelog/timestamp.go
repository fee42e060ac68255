package timelog

import (
	"fmt"
	"time"
)

const (
	// TimestampLayout is how timestamps are written to the database.
	TimestampLayout = "2006-01-02 15:04:05.000000"
	// secondsLayout is accepted on read for rows written without microseconds.
	secondsLayout = "2006-01-02 15:04:05"
	// DateLayout matches SQLite's date() output.
	DateLayout = "2006-01-02"
)

func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp reads a stored timestamp in the local time zone.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{TimestampLayout, secondsLayout} {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}
