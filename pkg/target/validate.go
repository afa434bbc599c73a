// Package target implements post-transform annotation validation and the
// synchronization of label arrays and additional-target streams with their
// annotation sets.
//
// After a geometric transform, annotations can land outside the image. The
// validator filters them and reports a keep mask aligned with the input; the
// synchronizer projects the same reduction onto every sequence declared to be
// aligned with that annotation set, so labels and companion streams never
// drift out of step with their annotations.
package target

import (
	"github.com/menta2k/image-augment/pkg/bbox"
	"github.com/menta2k/image-augment/pkg/errors"
	"github.com/menta2k/image-augment/pkg/keypoint"
)

// FilterKeypoints returns the keypoints whose coordinates lie inside a
// rows×cols image, plus the keep mask aligned with the input. Bounds are
// half-open: a coordinate exactly equal to the image dimension is out of
// bounds. Order is preserved.
func FilterKeypoints(kps []keypoint.Keypoint, rows, cols int) ([]keypoint.Keypoint, []bool) {
	kept := make([]keypoint.Keypoint, 0, len(kps))
	mask := make([]bool, len(kps))
	for i, kp := range kps {
		if kp.X >= 0 && kp.X < float64(cols) && kp.Y >= 0 && kp.Y < float64(rows) {
			mask[i] = true
			kept = append(kept, kp)
		}
	}
	return kept, mask
}

// FilterBoxes returns the boxes that retain positive area after clipping to
// the image square, plus the keep mask aligned with the input. Survivors are
// returned clipped. Order is preserved.
func FilterBoxes(boxes []bbox.Box) ([]bbox.Box, []bool) {
	kept := make([]bbox.Box, 0, len(boxes))
	mask := make([]bool, len(boxes))
	for i, b := range boxes {
		clipped := b.Clip()
		if clipped.Area() > 0 {
			mask[i] = true
			kept = append(kept, clipped)
		}
	}
	return kept, mask
}

// ApplyMask reduces a sequence aligned with an annotation set to the elements
// at kept positions, preserving relative order. It fails with a
// TARGET_MISMATCH error when the sequence's length differs from the mask's.
func ApplyMask[T any](mask []bool, seq []T) ([]T, error) {
	if len(seq) != len(mask) {
		return nil, errors.New(errors.ErrCodeTargetMismatch,
			"aligned sequence has %d items, keep mask has %d", len(seq), len(mask))
	}
	kept := make([]T, 0, len(seq))
	for i, keep := range mask {
		if keep {
			kept = append(kept, seq[i])
		}
	}
	return kept, nil
}

// CombineMasks intersects two keep masks over the same annotation set. The
// second mask is indexed over the survivors of the first, as produced by
// chained filtering steps.
func CombineMasks(first, second []bool) []bool {
	combined := make([]bool, len(first))
	j := 0
	for i, keep := range first {
		if keep {
			combined[i] = second[j]
			j++
		}
	}
	return combined
}
