// Package transform defines the transform abstraction used by the
// augmentation pipeline and a library of geometric transforms.
//
// A transform is split into two phases: Sample draws every random parameter
// for one invocation, and the capability methods apply those sampled
// parameters to individual target kinds. The pipeline samples once per applied
// transform and hands the identical Params to every target of a kind, so two
// keypoint streams in one call are always rotated by the same angle, cropped
// by the same window, and so on.
//
// Each transform implements only the capability interfaces for the target
// kinds it affects. Kinds without a matching capability pass through the
// pipeline unmodified and are not re-validated on that step.
package transform

import (
	"image"
	"math/rand"

	"github.com/menta2k/image-augment/pkg/bbox"
	"github.com/menta2k/image-augment/pkg/keypoint"
	"github.com/menta2k/image-augment/pkg/target"
)

// Kind names a target kind a transform can affect.
type Kind string

// Target kinds.
const (
	KindImage     Kind = "image"
	KindMask      Kind = "mask"
	KindKeypoints Kind = "keypoints"
	KindBboxes    Kind = "bboxes"
)

// ValidKinds is the set of base kinds an additional target may declare.
var ValidKinds = map[Kind]bool{
	KindImage:     true,
	KindMask:      true,
	KindKeypoints: true,
	KindBboxes:    true,
}

// Params carries the parameters sampled for one application of a transform.
// Only the slots a given transform samples are meaningful; everything else
// stays at its zero value.
type Params struct {
	Angle          float64         // rotation angle in degrees
	Factor         int             // counter-clockwise quarter turns
	ScaleX, ScaleY float64         // axis scale factors
	Crop           image.Rectangle // crop window in pixel coordinates
	Regions        []target.Region // dropped hole regions
}

// Transform is the minimal surface every transform provides. Randomness is
// confined to Sample; the capability methods below are deterministic given
// the sampled Params.
type Transform interface {
	// Name identifies the transform in logs and error messages.
	Name() string

	// Probability returns the per-call application probability in [0,1].
	Probability() float64

	// Sample draws the per-call parameters for a rows×cols image. The same
	// Params are applied to every target the transform touches.
	Sample(rng *rand.Rand, rows, cols int) Params
}

// ImageApplier is implemented by transforms that affect the image.
type ImageApplier interface {
	ApplyToImage(img image.Image, p Params) image.Image
}

// MaskApplier is implemented by transforms that affect the mask. Masks follow
// the image geometrically but use resampling that preserves label values
// where the distinction matters.
type MaskApplier interface {
	ApplyToMask(m image.Image, p Params) image.Image
}

// KeypointApplier is implemented by transforms that move keypoints. rows and
// cols are the image dimensions before the transform.
type KeypointApplier interface {
	ApplyToKeypoints(kps []keypoint.Keypoint, p Params, rows, cols int) []keypoint.Keypoint
}

// BoxApplier is implemented by transforms that move bounding boxes. rows and
// cols are the image dimensions before the transform.
type BoxApplier interface {
	ApplyToBoxes(boxes []bbox.Box, p Params, rows, cols int) []bbox.Box
}

// KeypointDropper is implemented by region-removal transforms that drop
// annotations without moving them. The returned keep mask is aligned with the
// input and is projected onto label arrays by the pipeline.
type KeypointDropper interface {
	KeypointKeepMask(kps []keypoint.Keypoint, p Params) []bool
}

// DimsChecker is implemented by transforms with requirements on the input
// dimensions (e.g. a crop window that must fit). The pipeline calls it before
// sampling and fails fast on error.
type DimsChecker interface {
	CheckDims(rows, cols int) error
}
