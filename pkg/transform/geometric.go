package transform

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-augment/pkg/bbox"
	"github.com/menta2k/image-augment/pkg/errors"
	"github.com/menta2k/image-augment/pkg/keypoint"
)

// NoOp applies no effect to any target. Useful as a pipeline placeholder and
// in tests.
type NoOp struct {
	P float64
}

func (t NoOp) Name() string                       { return "NoOp" }
func (t NoOp) Probability() float64               { return t.P }
func (t NoOp) Sample(*rand.Rand, int, int) Params { return Params{} }

// HorizontalFlip mirrors all targets across the vertical image axis.
type HorizontalFlip struct {
	P float64
}

func (t HorizontalFlip) Name() string                       { return "HorizontalFlip" }
func (t HorizontalFlip) Probability() float64               { return t.P }
func (t HorizontalFlip) Sample(*rand.Rand, int, int) Params { return Params{} }

func (t HorizontalFlip) ApplyToImage(img image.Image, _ Params) image.Image {
	return imaging.FlipH(img)
}

func (t HorizontalFlip) ApplyToMask(m image.Image, _ Params) image.Image {
	return imaging.FlipH(m)
}

func (t HorizontalFlip) ApplyToKeypoints(kps []keypoint.Keypoint, _ Params, rows, cols int) []keypoint.Keypoint {
	out := make([]keypoint.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = keypoint.FlipHorizontal(kp, rows, cols)
	}
	return out
}

func (t HorizontalFlip) ApplyToBoxes(boxes []bbox.Box, _ Params, rows, cols int) []bbox.Box {
	out := make([]bbox.Box, len(boxes))
	for i, b := range boxes {
		out[i] = bbox.FlipHorizontal(b)
	}
	return out
}

// VerticalFlip mirrors all targets across the horizontal image axis.
type VerticalFlip struct {
	P float64
}

func (t VerticalFlip) Name() string                       { return "VerticalFlip" }
func (t VerticalFlip) Probability() float64               { return t.P }
func (t VerticalFlip) Sample(*rand.Rand, int, int) Params { return Params{} }

func (t VerticalFlip) ApplyToImage(img image.Image, _ Params) image.Image {
	return imaging.FlipV(img)
}

func (t VerticalFlip) ApplyToMask(m image.Image, _ Params) image.Image {
	return imaging.FlipV(m)
}

func (t VerticalFlip) ApplyToKeypoints(kps []keypoint.Keypoint, _ Params, rows, cols int) []keypoint.Keypoint {
	out := make([]keypoint.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = keypoint.FlipVertical(kp, rows, cols)
	}
	return out
}

func (t VerticalFlip) ApplyToBoxes(boxes []bbox.Box, _ Params, rows, cols int) []bbox.Box {
	out := make([]bbox.Box, len(boxes))
	for i, b := range boxes {
		out[i] = bbox.FlipVertical(b)
	}
	return out
}

// RandomRotate90 rotates all targets by a uniformly sampled number of
// counter-clockwise quarter turns (0 to 3).
type RandomRotate90 struct {
	P float64
}

func (t RandomRotate90) Name() string         { return "RandomRotate90" }
func (t RandomRotate90) Probability() float64 { return t.P }

func (t RandomRotate90) Sample(rng *rand.Rand, _, _ int) Params {
	return Params{Factor: rng.Intn(4)}
}

func (t RandomRotate90) ApplyToImage(img image.Image, p Params) image.Image {
	return rotate90Image(img, p.Factor)
}

func (t RandomRotate90) ApplyToMask(m image.Image, p Params) image.Image {
	return rotate90Image(m, p.Factor)
}

func rotate90Image(img image.Image, factor int) image.Image {
	switch ((factor % 4) + 4) % 4 {
	case 1:
		return imaging.Rotate90(img)
	case 2:
		return imaging.Rotate180(img)
	case 3:
		return imaging.Rotate270(img)
	}
	return imaging.Clone(img)
}

func (t RandomRotate90) ApplyToKeypoints(kps []keypoint.Keypoint, p Params, rows, cols int) []keypoint.Keypoint {
	out := make([]keypoint.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = keypoint.Rotate90(kp, p.Factor, rows, cols)
	}
	return out
}

func (t RandomRotate90) ApplyToBoxes(boxes []bbox.Box, p Params, rows, cols int) []bbox.Box {
	out := make([]bbox.Box, len(boxes))
	for i, b := range boxes {
		out[i] = bbox.Rotate90(b, p.Factor)
	}
	return out
}

// Rotate rotates all targets about the image center by an angle sampled
// uniformly from [-Limit, Limit] degrees (positive = counter-clockwise). The
// pixel canvas is rotated and center-cropped back to the source dimensions,
// matching the keypoint and box math which keep the image shape fixed.
type Rotate struct {
	P     float64
	Limit float64
}

func (t Rotate) Name() string         { return "Rotate" }
func (t Rotate) Probability() float64 { return t.P }

func (t Rotate) Sample(rng *rand.Rand, _, _ int) Params {
	return Params{Angle: -t.Limit + rng.Float64()*2*t.Limit}
}

func (t Rotate) ApplyToImage(img image.Image, p Params) image.Image {
	b := img.Bounds()
	rotated := imaging.Rotate(img, p.Angle, color.Transparent)
	return imaging.CropCenter(rotated, b.Dx(), b.Dy())
}

func (t Rotate) ApplyToMask(m image.Image, p Params) image.Image {
	b := m.Bounds()
	rotated := imaging.Rotate(m, p.Angle, color.Transparent)
	return imaging.CropCenter(rotated, b.Dx(), b.Dy())
}

func (t Rotate) ApplyToKeypoints(kps []keypoint.Keypoint, p Params, rows, cols int) []keypoint.Keypoint {
	out := make([]keypoint.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = keypoint.Rotate(kp, p.Angle, rows, cols)
	}
	return out
}

func (t Rotate) ApplyToBoxes(boxes []bbox.Box, p Params, rows, cols int) []bbox.Box {
	out := make([]bbox.Box, len(boxes))
	for i, b := range boxes {
		out[i] = bbox.Rotate(b, p.Angle, rows, cols)
	}
	return out
}

// RandomScale resizes the image by a factor sampled uniformly from
// [1-Limit, 1+Limit]. Keypoint coordinates scale with the image; normalized
// boxes are invariant under uniform resizing, so the transform does not touch
// them.
type RandomScale struct {
	P     float64
	Limit float64
}

func (t RandomScale) Name() string         { return "RandomScale" }
func (t RandomScale) Probability() float64 { return t.P }

func (t RandomScale) Sample(rng *rand.Rand, _, _ int) Params {
	s := 1 - t.Limit + rng.Float64()*2*t.Limit
	return Params{ScaleX: s, ScaleY: s}
}

func (t RandomScale) ApplyToImage(img image.Image, p Params) image.Image {
	b := img.Bounds()
	w := scaleDim(b.Dx(), p.ScaleX)
	h := scaleDim(b.Dy(), p.ScaleY)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func (t RandomScale) ApplyToMask(m image.Image, p Params) image.Image {
	b := m.Bounds()
	w := scaleDim(b.Dx(), p.ScaleX)
	h := scaleDim(b.Dy(), p.ScaleY)
	return imaging.Resize(m, w, h, imaging.NearestNeighbor)
}

func scaleDim(d int, s float64) int {
	n := int(float64(d)*s + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func (t RandomScale) ApplyToKeypoints(kps []keypoint.Keypoint, p Params, rows, cols int) []keypoint.Keypoint {
	// Scale against the rounded output dimensions so keypoints match the
	// resized pixel grid exactly.
	sx := float64(scaleDim(cols, p.ScaleX)) / float64(cols)
	sy := float64(scaleDim(rows, p.ScaleY)) / float64(rows)
	out := make([]keypoint.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = keypoint.Scale(kp, sx, sy)
	}
	return out
}

// CenterCrop crops all targets to a Width×Height window centered on the
// image.
type CenterCrop struct {
	P      float64
	Height int
	Width  int
}

func (t CenterCrop) Name() string         { return "CenterCrop" }
func (t CenterCrop) Probability() float64 { return t.P }

func (t CenterCrop) CheckDims(rows, cols int) error {
	return checkCropFits(t.Height, t.Width, rows, cols, t.Name())
}

func (t CenterCrop) Sample(_ *rand.Rand, rows, cols int) Params {
	x1 := (cols - t.Width) / 2
	y1 := (rows - t.Height) / 2
	return Params{Crop: image.Rect(x1, y1, x1+t.Width, y1+t.Height)}
}

func (t CenterCrop) ApplyToImage(img image.Image, p Params) image.Image {
	return imaging.Crop(img, p.Crop)
}

func (t CenterCrop) ApplyToMask(m image.Image, p Params) image.Image {
	return imaging.Crop(m, p.Crop)
}

func (t CenterCrop) ApplyToKeypoints(kps []keypoint.Keypoint, p Params, rows, cols int) []keypoint.Keypoint {
	return cropKeypoints(kps, p.Crop)
}

func (t CenterCrop) ApplyToBoxes(boxes []bbox.Box, p Params, rows, cols int) []bbox.Box {
	return cropBoxes(boxes, p.Crop, rows, cols)
}

// RandomCrop crops all targets to a Width×Height window at a uniformly
// sampled position.
type RandomCrop struct {
	P      float64
	Height int
	Width  int
}

func (t RandomCrop) Name() string         { return "RandomCrop" }
func (t RandomCrop) Probability() float64 { return t.P }

func (t RandomCrop) CheckDims(rows, cols int) error {
	return checkCropFits(t.Height, t.Width, rows, cols, t.Name())
}

func (t RandomCrop) Sample(rng *rand.Rand, rows, cols int) Params {
	x1 := rng.Intn(cols - t.Width + 1)
	y1 := rng.Intn(rows - t.Height + 1)
	return Params{Crop: image.Rect(x1, y1, x1+t.Width, y1+t.Height)}
}

func (t RandomCrop) ApplyToImage(img image.Image, p Params) image.Image {
	return imaging.Crop(img, p.Crop)
}

func (t RandomCrop) ApplyToMask(m image.Image, p Params) image.Image {
	return imaging.Crop(m, p.Crop)
}

func (t RandomCrop) ApplyToKeypoints(kps []keypoint.Keypoint, p Params, rows, cols int) []keypoint.Keypoint {
	return cropKeypoints(kps, p.Crop)
}

func (t RandomCrop) ApplyToBoxes(boxes []bbox.Box, p Params, rows, cols int) []bbox.Box {
	return cropBoxes(boxes, p.Crop, rows, cols)
}

func checkCropFits(height, width, rows, cols int, name string) error {
	if height <= 0 || width <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"%s: crop size %dx%d must be positive", name, width, height)
	}
	if height > rows || width > cols {
		return errors.New(errors.ErrCodeInvalidInput,
			"%s: crop size %dx%d exceeds image size %dx%d", name, width, height, cols, rows)
	}
	return nil
}

func cropKeypoints(kps []keypoint.Keypoint, crop image.Rectangle) []keypoint.Keypoint {
	out := make([]keypoint.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = keypoint.Crop(kp, crop.Min.X, crop.Min.Y)
	}
	return out
}

func cropBoxes(boxes []bbox.Box, crop image.Rectangle, rows, cols int) []bbox.Box {
	out := make([]bbox.Box, len(boxes))
	for i, b := range boxes {
		out[i] = bbox.Crop(b, crop.Min.X, crop.Min.Y, crop.Max.X, crop.Max.Y, rows, cols)
	}
	return out
}
