package timelog

import (
	"fmt"
	"time"
)

// TimeEntry represents one tracked interval for a project. EndTime is zero
// while the entry is still running.
type TimeEntry struct {
	ID        int64
	ProjectID int64
	StartTime time.Time
	EndTime   time.Time
}

func (e TimeEntry) Active() bool {
	return e.EndTime.IsZero()
}

// Elapsed returns the length of a closed entry, or the time since start for
// the active one.
func (e TimeEntry) Elapsed(now time.Time) time.Duration {
	if e.Active() {
		return now.Sub(e.StartTime)
	}
	return e.EndTime.Sub(e.StartTime)
}

// FormatClock renders d as HH:MM, truncated to whole minutes. Hours do not
// wrap at 24.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
