package timelog

import (
	"fmt"
	"time"
)

// Format renders d as HH:MM:SS.cc. The hours field grows past two digits
// instead of wrapping at 24h. Negative durations render as zero.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	minutes := (ms / 60_000) % 60
	seconds := (ms / 1000) % 60
	centis := (ms / 10) % 100
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

// Millis truncates t to millisecond precision and drops the monotonic reading,
// which is what the log stores.
func Millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}
