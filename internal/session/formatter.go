package session

import (
	"fmt"
	"math"
	"strconv"

	"github.com/uvmon/uvmon/internal/dose"
)

// Warning lines emitted once per tick for as long as the dose sits at or
// past the threshold. Level-triggered, not edge-triggered.
const (
	terseWarning   = "w:1"
	verboseWarning = "WARNING: burn threshold reached - seek shade"
)

// FormatReport renders one accumulator tick as transport lines. The terse
// form is the fixed machine-parseable format (q: dose, p: percent, t: time,
// u: raw index); the verbose form is for humans on the other end of the
// link.
func FormatReport(r dose.Report, verbose bool) []string {
	if verbose {
		lines := []string{
			fmt.Sprintf("UV index: %s", formatFloat(r.UVIndex)),
			fmt.Sprintf("Dose: %s of %s", formatFloat(r.CumulativeDose), formatFloat(r.Threshold)),
			fmt.Sprintf("Burn: %s%%", formatFloat(r.BurnPercent)),
			fmt.Sprintf("Time to burn: %s min (smoothed %s)", formatFloat(r.TimeToBurnMin), formatFloat(r.SmoothedToBurnMin)),
		}
		if r.OverThreshold {
			lines = append(lines, verboseWarning)
		}
		return lines
	}

	lines := []string{
		"q:" + formatFloat(r.CumulativeDose),
		"p:" + formatFloat(r.BurnPercent),
		"t:" + formatFloat(r.TimeToBurnMin),
		"u:" + formatFloat(r.UVIndex),
	}
	if r.OverThreshold {
		lines = append(lines, terseWarning)
	}
	return lines
}

// formatFloat renders values with two decimals. Infinities (a stalled
// time-to-burn estimate) render as "inf" so line parsers see a stable token.
func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
