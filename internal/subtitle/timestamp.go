package subtitle

import (
	"fmt"
	"math"
)

// FormatTimestamp converts a second offset to the SRT display format
// HH:MM:SS,mmm. Milliseconds are truncated, not rounded, and hours grow
// past 99 without truncation.
func FormatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(math.Mod(seconds, 60))
	millis := int((seconds - math.Floor(seconds)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
