package keypoint

import "math"

// Geometric operators on the internal representation. All of them are pure
// functions: no randomness, no I/O, no mutation of the input. Any operator
// that changes the angle renormalizes it into [0, 2π).
//
// Callers must not invoke operators with zero rows or cols; behavior on an
// empty image is undefined.

// FlipHorizontal mirrors a keypoint across the vertical axis of a rows×cols
// image.
func FlipHorizontal(kp Keypoint, rows, cols int) Keypoint {
	_ = rows
	kp.X = float64(cols-1) - kp.X
	kp.Angle = NormalizeAngle(math.Pi - kp.Angle)
	return kp
}

// FlipVertical mirrors a keypoint across the horizontal axis of a rows×cols
// image.
func FlipVertical(kp Keypoint, rows, cols int) Keypoint {
	_ = cols
	kp.Y = float64(rows-1) - kp.Y
	kp.Angle = NormalizeAngle(-kp.Angle)
	return kp
}

// Rotate90 rotates a keypoint by factor counter-clockwise quarter turns within
// a rows×cols image. factor is taken modulo 4. Note the image dimensions swap
// for odd factors, so chained applications must pass the updated dimensions:
//
//	Rotate90(Rotate90(kp, 1, rows, cols), 1, cols, rows) == Rotate90(kp, 2, rows, cols)
func Rotate90(kp Keypoint, factor, rows, cols int) Keypoint {
	factor = ((factor % 4) + 4) % 4
	x, y := kp.X, kp.Y
	switch factor {
	case 1:
		kp.X, kp.Y = y, float64(cols-1)-x
	case 2:
		kp.X, kp.Y = float64(cols-1)-x, float64(rows-1)-y
	case 3:
		kp.X, kp.Y = float64(rows-1)-y, x
	}
	kp.Angle = NormalizeAngle(kp.Angle - float64(factor)*math.Pi/2)
	return kp
}

// Rotate rotates a keypoint by angleDeg degrees (positive = counter-clockwise)
// about the center of a rows×cols image. Coordinates are shifted to be
// center-relative, rotated with the standard 2D rotation matrix adapted for
// the y-down image coordinate system, then shifted back.
func Rotate(kp Keypoint, angleDeg float64, rows, cols int) Keypoint {
	theta := angleDeg * math.Pi / 180
	cx := float64(cols-1) / 2
	cy := float64(rows-1) / 2
	dx := kp.X - cx
	dy := kp.Y - cy
	sin, cos := math.Sincos(theta)
	kp.X = cx + dx*cos + dy*sin
	kp.Y = cy - dx*sin + dy*cos
	kp.Angle = NormalizeAngle(kp.Angle + theta)
	return kp
}

// Scale scales a keypoint's coordinates by (scaleX, scaleY). The scale field
// is multiplied by scaleX (uniform scaling is assumed for that field); the
// angle is unchanged.
func Scale(kp Keypoint, scaleX, scaleY float64) Keypoint {
	kp.X *= scaleX
	kp.Y *= scaleY
	kp.Scale *= scaleX
	return kp
}

// Crop re-expresses a keypoint relative to a crop window whose top-left corner
// is (xMin, yMin). The result may fall outside the crop and is expected to be
// filtered by the validator afterwards.
func Crop(kp Keypoint, xMin, yMin int) Keypoint {
	kp.X -= float64(xMin)
	kp.Y -= float64(yMin)
	return kp
}
