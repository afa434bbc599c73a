package bbox

import "math"

// Geometric operators on the normalized representation. The conventions match
// the keypoint operators: flipping reflects the relevant axis bounds, rotation
// takes the axis-aligned bounding box of the four rotated corners.
//
// Callers must not invoke aspect-dependent operators with zero rows or cols;
// behavior on an empty image is undefined.

// FlipHorizontal mirrors a box across the vertical image axis.
func FlipHorizontal(b Box) Box {
	b.XMin, b.XMax = 1-b.XMax, 1-b.XMin
	return b
}

// FlipVertical mirrors a box across the horizontal image axis.
func FlipVertical(b Box) Box {
	b.YMin, b.YMax = 1-b.YMax, 1-b.YMin
	return b
}

// Rotate90 rotates a box by factor counter-clockwise quarter turns. factor is
// taken modulo 4. Normalized coordinates make the dimension swap implicit.
func Rotate90(b Box, factor int) Box {
	factor = ((factor % 4) + 4) % 4
	xMin, yMin, xMax, yMax := b.XMin, b.YMin, b.XMax, b.YMax
	switch factor {
	case 1:
		b.XMin, b.YMin, b.XMax, b.YMax = yMin, 1-xMax, yMax, 1-xMin
	case 2:
		b.XMin, b.YMin, b.XMax, b.YMax = 1-xMax, 1-yMax, 1-xMin, 1-yMin
	case 3:
		b.XMin, b.YMin, b.XMax, b.YMax = 1-yMax, xMin, 1-yMin, xMax
	}
	return b
}

// Rotate rotates a box by angleDeg degrees (positive = counter-clockwise)
// about the image center and returns the axis-aligned bounding box of the four
// rotated corners. rows and cols supply the aspect ratio; rotation is not
// aspect-preserving in normalized coordinates.
func Rotate(b Box, angleDeg float64, rows, cols int) Box {
	theta := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(theta)
	aspect := float64(cols) / float64(rows)

	xs := [4]float64{b.XMin, b.XMax, b.XMax, b.XMin}
	ys := [4]float64{b.YMin, b.YMin, b.YMax, b.YMax}

	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for i := 0; i < 4; i++ {
		// Center-relative, aspect-corrected rotation in the y-down frame.
		x := (xs[i] - 0.5) * aspect
		y := ys[i] - 0.5
		xr := (x*cos + y*sin) / aspect
		yr := -x*sin + y*cos
		xMin = math.Min(xMin, xr+0.5)
		xMax = math.Max(xMax, xr+0.5)
		yMin = math.Min(yMin, yr+0.5)
		yMax = math.Max(yMax, yr+0.5)
	}
	b.XMin, b.YMin, b.XMax, b.YMax = xMin, yMin, xMax, yMax
	return b
}

// Crop re-expresses a box relative to a pixel-space crop window
// (x1, y1)-(x2, y2) on a rows×cols image, renormalizing by the window
// dimensions. The result may extend past [0,1] and is expected to be clipped
// and filtered by the validator afterwards.
func Crop(b Box, x1, y1, x2, y2, rows, cols int) Box {
	w := float64(cols)
	h := float64(rows)
	cw := float64(x2 - x1)
	ch := float64(y2 - y1)
	b.XMin = (b.XMin*w - float64(x1)) / cw
	b.XMax = (b.XMax*w - float64(x1)) / cw
	b.YMin = (b.YMin*h - float64(y1)) / ch
	b.YMax = (b.YMax*h - float64(y1)) / ch
	return b
}
