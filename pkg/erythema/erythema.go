// Package erythema provides minimal-erythemal-dose (MED) thresholds and the
// dose arithmetic used to convert UV index samples into burn-risk estimates.
//
// Doses are kept in scaled index-energy units: one sample contributes
// uvIndex * DoseScale, and the per-skin-type thresholds carry the matching
// x1000 scale. The units are internally consistent; they are not calibrated
// J/m^2.
package erythema

import "math"

const (
	// DoseScale converts a unitless UV index sample into a per-second dose
	// increment.
	DoseScale = 25.0

	// DoseFloor is substituted for non-positive increments when floor
	// substitution is enabled, so accumulation never stalls on a faulted
	// sensor.
	DoseFloor = 1.0

	// DefaultMED is the threshold used for skin types outside the defined
	// Fitzpatrick range.
	DefaultMED = 150000.0

	// MinSkinType and MaxSkinType bound the defined Fitzpatrick lookup domain.
	MinSkinType = 0
	MaxSkinType = 6
)

// MEDThreshold returns the minimal-erythemal-dose threshold for a Fitzpatrick
// skin type. Types outside the defined domain fall back to DefaultMED.
func MEDThreshold(skinType int) float64 {
	switch skinType {
	case 0:
		return 80000
	case 1:
		return 150000
	case 2:
		return 250000
	case 3:
		return 350000
	case 4:
		return 450000
	case 5:
		return 600000
	case 6:
		return 1000000
	default:
		return DefaultMED
	}
}

// DoseIncrement converts a UV index sample into a dose increment. With
// applyFloor set, non-positive results (negative sensor sentinels, nighttime
// zero) are replaced with DoseFloor.
func DoseIncrement(uvIndex float64, applyFloor bool) float64 {
	inc := uvIndex * DoseScale
	if applyFloor && inc <= 0 {
		return DoseFloor
	}
	return inc
}

// BurnPercent returns progress toward the burn threshold as a percentage.
// SPF divides effective absorption; values below 1 are treated as 1.
func BurnPercent(cumulativeDose, threshold float64, spf int) float64 {
	if spf < 1 {
		spf = 1
	}
	return cumulativeDose / (threshold * float64(spf)) * 100.0
}

// TimeToBurn returns the linear extrapolation, in minutes, of how long the
// current increment rate would take to reach the threshold. It uses only the
// instantaneous increment, not a smoothed rate, so the estimate jumps around
// with the sensor. A non-positive increment yields +Inf rather than dividing
// by zero; a dose already past the threshold yields a negative estimate.
func TimeToBurn(cumulativeDose, threshold, increment float64, spf int) float64 {
	if spf < 1 {
		spf = 1
	}
	rate := increment * 60.0
	if rate <= 0 {
		return math.Inf(1)
	}
	adjusted := cumulativeDose / float64(spf)
	return (threshold - adjusted) / rate
}
