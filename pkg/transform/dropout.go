package transform

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/disintegration/imaging"

	"github.com/menta2k/image-augment/pkg/keypoint"
	"github.com/menta2k/image-augment/pkg/target"
)

// CoarseDropout cuts rectangular holes out of the image and drops every
// keypoint that falls inside any hole. Hole count and size are sampled per
// call; a keypoint dropped by one hole stays dropped regardless of the other
// holes, so the survivor set is the input minus the union of all hole
// interiors. Bounding boxes and masks are left untouched.
type CoarseDropout struct {
	P         float64
	MinHoles  int
	MaxHoles  int
	MinHeight int
	MaxHeight int
	MinWidth  int
	MaxWidth  int
	Fill      color.Color // hole fill color, black when nil
}

func (t CoarseDropout) Name() string         { return "CoarseDropout" }
func (t CoarseDropout) Probability() float64 { return t.P }

func (t CoarseDropout) Sample(rng *rand.Rand, rows, cols int) Params {
	n := t.MinHoles + rng.Intn(t.MaxHoles-t.MinHoles+1)
	regions := make([]target.Region, 0, n)
	for i := 0; i < n; i++ {
		h := t.MinHeight + rng.Intn(t.MaxHeight-t.MinHeight+1)
		w := t.MinWidth + rng.Intn(t.MaxWidth-t.MinWidth+1)
		if h > rows {
			h = rows
		}
		if w > cols {
			w = cols
		}
		y1 := rng.Intn(rows - h + 1)
		x1 := rng.Intn(cols - w + 1)
		regions = append(regions, target.Region{X1: x1, Y1: y1, X2: x1 + w, Y2: y1 + h})
	}
	return Params{Regions: regions}
}

func (t CoarseDropout) ApplyToImage(img image.Image, p Params) image.Image {
	fill := t.Fill
	if fill == nil {
		fill = color.Black
	}
	out := imaging.Clone(img)
	for _, r := range p.Regions {
		rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Intersect(out.Bounds())
		draw.Draw(out, rect, image.NewUniform(fill), image.Point{}, draw.Src)
	}
	return out
}

func (t CoarseDropout) KeypointKeepMask(kps []keypoint.Keypoint, p Params) []bool {
	return target.KeypointsOutsideRegions(kps, p.Regions)
}
