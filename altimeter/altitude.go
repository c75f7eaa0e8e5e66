package altimeter

import "math"

// SeaLevelPressure is the standard atmospheric pressure at sea level in hPa.
const SeaLevelPressure = 1013.25

// ComputeAltitude converts a pressure in hPa to an altitude in meters using
// the international barometric formula:
//
//	h = 44330 * (1 - (P/P0)^(1/5.255))
//
// Pressures above P0 give negative altitudes. The result for pressure <= 0
// is whatever math.Pow yields (44330 for zero, NaN for negatives); callers
// are expected to pass sensor or clamped values.
func ComputeAltitude(pressure float64) float64 {
	return 44330 * (1 - math.Pow(pressure/SeaLevelPressure, 1/5.255))
}
