// Package keypoint implements the internal keypoint representation used by the
// augmentation pipeline, conversions between that representation and external
// coordinate formats, and the geometric operators that act on it.
//
// Internally a keypoint is always the same shape regardless of the external
// format: pixel coordinates, an angle in radians normalized to [0, 2π), a
// scale magnitude, and a trailing payload of extra fields carried through
// conversions untouched. Geometric operators only ever see this form, so the
// transform chain is decoupled from whatever tuple layout the caller uses.
package keypoint

import "math"

// Keypoint is the internal representation of a single keypoint.
//
// Angle is in radians within [0, 2π). Scale is a magnitude multiplier where 0
// means the external format carried no scale field; this is a defined
// convention kept consistent by ToInternal and FromInternal. Extra holds any
// positional payload fields beyond those the format defines (e.g. a visibility
// flag or id) and is preserved verbatim through a round trip.
type Keypoint struct {
	X     float64
	Y     float64
	Angle float64
	Scale float64
	Extra []float64
}

// AngleUnit selects the unit of the angle field in external records.
type AngleUnit string

// Supported angle units. Degrees is the default for external records; the
// internal representation is always radians.
const (
	Degrees AngleUnit = "degrees"
	Radians AngleUnit = "radians"
)

// NormalizeAngle wraps an angle in radians into the canonical [0, 2π) range.
// It handles negative inputs and inputs beyond one full turn.
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}
