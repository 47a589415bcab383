// Package humanize renders byte sizes and durations the way the comparison
// form shows them to users.
package humanize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// sizeUnits has no tier above megabytes; larger values stay in МБ.
var sizeUnits = []string{"байт", "КБ", "МБ"}

// FormatSize renders a byte count using 1024-based units rounded to two decimals.
// Zero (and anything below) renders as "0 байт".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 " + sizeUnits[0]
	}

	// floor(log1024(bytes)) computed on integers, clamped to the last unit
	unit := 0
	scale := int64(1)
	for unit < len(sizeUnits)-1 && bytes >= scale*1024 {
		scale *= 1024
		unit++
	}

	// Ties round up. value has a power-of-two denominator, so value*100 is exact.
	value := math.Floor(float64(bytes)/float64(scale)*100+0.5) / 100
	return trimDecimals(strconv.FormatFloat(value, 'f', 2, 64)) + " " + sizeUnits[unit]
}

// FormatTime renders seconds as "N сек" below a minute and "M мин S сек" above.
// Negative input is treated as zero.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if seconds < 60 {
		return fmt.Sprintf("%d сек", roundHalfUp(seconds))
	}

	minutes := int64(math.Floor(seconds / 60))
	remaining := roundHalfUp(math.Mod(seconds, 60))
	return fmt.Sprintf("%d мин %d сек", minutes, remaining)
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// trimDecimals drops trailing zeros and a dangling point: "1.50" -> "1.5", "2.00" -> "2".
func trimDecimals(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
