// Package imageaugment provides annotation-aware image augmentation.
//
// This package applies probabilistic geometric transforms to images while
// keeping keypoints, bounding boxes, segmentation masks and label arrays
// consistent with the transformed image.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		"github.com/menta2k/image-augment/pkg/imageio"
//		"github.com/menta2k/image-augment/pkg/pipeline"
//		"github.com/menta2k/image-augment/pkg/transform"
//	)
//
//	func main() {
//		aug, err := pipeline.Compose([]transform.Transform{
//			transform.HorizontalFlip{P: 0.5},
//			transform.Rotate{P: 0.7, Limit: 30},
//		}, pipeline.Options{
//			Keypoints: &pipeline.KeypointParams{Format: "xy"},
//			Seed:      42,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		img, err := imageio.Load("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		out, err := aug.Run(pipeline.Data{
//			Image:     img,
//			Keypoints: [][]float64{{120, 80}, {200, 150}},
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Println("keypoints after augmentation:", out.Keypoints)
//		if err := imageio.Save(out.Image, "photo_aug.jpg", imageio.SaveOptions{}); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these main components:
//
// 1. Pipeline (pkg/pipeline): Compose validates a transform chain, Run applies it
// 2. Transforms (pkg/transform): geometric and dropout transforms
// 3. Keypoints (pkg/keypoint): keypoint formats and coordinate math
// 4. Boxes (pkg/bbox): bounding-box formats and coordinate math
// 5. Targets (pkg/target): validation, filtering and label synchronization
// 6. ImageIO (pkg/imageio): loading and saving in common image formats
//
// Features:
//
//   - One parameter sample per transform applied to every target identically
//   - Keypoint formats with any ordering of x, y, angle and scale fields
//   - Bounding-box formats: pascal_voc, coco, yolo and normalized corners
//   - Label arrays that shrink in lockstep with filtered annotations
//   - Additional named targets sharing the semantics of a base target kind
//   - Seeded, reproducible randomness
package imageaugment

import (
	"fmt"
	"image"

	"github.com/menta2k/image-augment/pkg/imageio"
	"github.com/menta2k/image-augment/pkg/pipeline"
	"github.com/menta2k/image-augment/pkg/transform"
)

// Version of the image augmentation library
const Version = "1.0.0"

// Augmenter bundles a composed pipeline with file loading and saving for
// callers that work with image files rather than decoded images.
type Augmenter struct {
	pipeline *pipeline.Pipeline
	save     imageio.SaveOptions
}

// New composes the given transforms and returns an Augmenter.
func New(transforms []transform.Transform, opts pipeline.Options) (*Augmenter, error) {
	p, err := pipeline.Compose(transforms, opts)
	if err != nil {
		return nil, err
	}
	return &Augmenter{pipeline: p}, nil
}

// SetSaveOptions overrides the encoder settings used by ProcessImageFile.
func (a *Augmenter) SetSaveOptions(opts imageio.SaveOptions) {
	a.save = opts
}

// Run applies the pipeline to already-decoded targets.
func (a *Augmenter) Run(d pipeline.Data) (pipeline.Data, error) {
	return a.pipeline.Run(d)
}

// RunImage applies the pipeline to a bare image with no annotations.
func (a *Augmenter) RunImage(img image.Image) (image.Image, error) {
	out, err := a.pipeline.Run(pipeline.Data{Image: img})
	if err != nil {
		return nil, err
	}
	return out.Image, nil
}

// ProcessImageFile loads an image file, augments it and writes the result.
func (a *Augmenter) ProcessImageFile(inputPath, outputPath string) error {
	img, err := imageio.LoadAny(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	out, err := a.RunImage(img)
	if err != nil {
		return fmt.Errorf("augmentation failed: %w", err)
	}

	if err := imageio.Save(out, outputPath, a.save); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
