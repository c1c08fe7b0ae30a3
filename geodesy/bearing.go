package geodesy

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// BearingDegrees returns the initial bearing on the sphere from one point
// to another, in [0, 360).
func BearingDegrees(from, to orb.Point) float64 {
	return NormalizeBearing(geo.Bearing(from, to))
}

// NormalizeBearing folds any bearing into [0, 360) by whole turns.
func NormalizeBearing(b float64) float64 {
	for b >= 360.0 {
		b -= 360.0
	}
	for b < 0.0 {
		b += 360.0
	}
	return b
}

// ClassifyDirection reports whether a bearing lies in the quadrant of a
// direction. Quadrant bounds are inclusive on both sides, so 45, 135, 225
// and 315 each belong to two directions.
func ClassifyDirection(bearing float64, d Direction) bool {
	switch d {
	case North:
		return bearing <= 45 || bearing >= 315
	case East:
		return bearing >= 45 && bearing <= 135
	case South:
		return bearing >= 135 && bearing <= 225
	case West:
		return bearing >= 225 && bearing <= 315
	}
	return false
}
