package altimeter

import "fmt"

const (
	minColorAltitude = -500.0
	maxColorAltitude = 3000.0

	// absorbs float error so that e.g. 100*(1-0.8) lands on 20, not 19
	truncEpsilon = 1e-9
)

// Color is the background tint for an altitude. Higher is darker.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MapAltitudeToColor maps an altitude in meters to a color. The altitude is
// clamped to [-500, 3000] and each channel fades linearly as it rises.
func MapAltitudeToColor(altitude float64) Color {
	t := (clamp(altitude, minColorAltitude, maxColorAltitude) - minColorAltitude) /
		(maxColorAltitude - minColorAltitude)

	return Color{
		R: channel(100 * (1 - t*0.8)),
		G: channel(150 * (1 - t*0.7)),
		B: channel(200 * (1 - t*0.5)),
	}
}

// channel truncates toward zero and clamps to a byte.
func channel(v float64) uint8 {
	n := int(v + truncEpsilon)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
