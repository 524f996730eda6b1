package timefmt

import (
	"fmt"
	"time"
)

// Duration renders d compactly for terminal output: "2h 15m", "5m 3s", "42s".
func Duration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Seconds renders a duration carried as a second count, the form event
// payloads use.
func Seconds(v int64) string {
	return Duration(time.Duration(v) * time.Second)
}

// Clock renders d as an h:mm:ss readout for displays that tick.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Stamp renders an instant for terminal output in local time.
func Stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
