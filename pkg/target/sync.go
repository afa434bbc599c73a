package target

import (
	"github.com/menta2k/image-augment/pkg/keypoint"
)

// Region is a rectangular pixel-space region (x1, y1)-(x2, y2) with half-open
// bounds, used by region-removal transforms to drop annotations that fall
// inside removed areas.
type Region struct {
	X1, Y1, X2, Y2 int
}

// Contains reports whether the point (x, y) lies inside the region.
func (r Region) Contains(x, y float64) bool {
	return x >= float64(r.X1) && x < float64(r.X2) &&
		y >= float64(r.Y1) && y < float64(r.Y2)
}

// Width returns the pixel width of the region.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns the pixel height of the region.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// KeypointsOutsideRegions computes the keep mask for keypoints against the
// union of the given regions: a keypoint is dropped iff it falls within any
// region. The result is independent of region order — set semantics, the
// survivor set is the keypoint set minus the union of all region interiors.
func KeypointsOutsideRegions(kps []keypoint.Keypoint, regions []Region) []bool {
	mask := make([]bool, len(kps))
	for i, kp := range kps {
		mask[i] = true
		for _, r := range regions {
			if r.Contains(kp.X, kp.Y) {
				mask[i] = false
				break
			}
		}
	}
	return mask
}
