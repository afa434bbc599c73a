// Package bbox implements the internal bounding-box representation used by the
// augmentation pipeline, conversions from and to external box formats, and the
// geometric operators that act on it.
//
// Internally a box is always normalized min/max corners in [0,1] relative to
// image width and height. Normalizing decouples the box math from absolute
// pixel dimensions: operators only need rows and cols at conversion
// boundaries and wherever the aspect ratio matters (rotation, cropping), not
// throughout the transform chain.
package bbox

// Box is the internal representation of a single bounding box: normalized
// corner coordinates plus a trailing payload of extra fields (e.g. a class
// id) preserved verbatim through a round trip.
type Box struct {
	XMin  float64
	YMin  float64
	XMax  float64
	YMax  float64
	Extra []float64
}

// Area returns the normalized area of the box. Inverted boxes report zero.
func (b Box) Area() float64 {
	w := b.XMax - b.XMin
	h := b.YMax - b.YMin
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Clip clamps the box corners to the [0,1] image square.
func (b Box) Clip() Box {
	b.XMin = clamp(b.XMin, 0, 1)
	b.YMin = clamp(b.YMin, 0, 1)
	b.XMax = clamp(b.XMax, 0, 1)
	b.YMax = clamp(b.YMax, 0, 1)
	return b
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
