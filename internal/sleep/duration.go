package sleep

import (
	"fmt"
	"math"
)

// MinutesToHMS renders a possibly fractional minute count as HH:MM:SS, the
// duration format the staging export expects. Hours are not wrapped at 24.
func MinutesToHMS(minutes float64) string {
	hours := int(minutes / 60)
	mins := int(math.Mod(minutes, 60))
	secs := int(math.Mod(minutes, 1) * 60)
	return fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
}
