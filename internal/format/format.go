// Package format renders the numbers that appear in reports.
package format

import (
	"fmt"
	"math"
	"strconv"
)

// isClose mirrors a relative tolerance comparison with a 1e-9 factor.
func isClose(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

// Number prints whole values without decimals and everything else with two.
func Number(v float64) string {
	if r := math.Round(v); isClose(v, r) {
		return strconv.FormatInt(int64(r), 10)
	}
	return fmt.Sprintf("%.2f", v)
}

// Probability prints p (in [0,1]) as a percentage.
func Probability(p float64) string {
	pct := p * 100
	if r := math.Round(pct); isClose(pct, r) {
		return fmt.Sprintf("%d%%", int64(r))
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// Duration labels a cycle time: whole hours as "Nh", otherwise "Ns".
func Duration(seconds int) string {
	if seconds%3600 == 0 {
		return fmt.Sprintf("%dh", seconds/3600)
	}
	return fmt.Sprintf("%ds", seconds)
}

// IsOne reports whether v is one within tolerance; used for plurals.
func IsOne(v float64) bool { return isClose(v, 1) }
