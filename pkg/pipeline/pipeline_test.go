package pipeline

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/menta2k/image-augment/pkg/errors"
	"github.com/menta2k/image-augment/pkg/transform"
)

func testImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func approxEqual(got, want [][]float64, tol float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if len(got[i]) != len(want[i]) {
			return false
		}
		for j := range got[i] {
			if math.Abs(got[i][j]-want[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

func TestComposeConfigErrors(t *testing.T) {
	tests := []struct {
		name       string
		transforms []transform.Transform
		opts       Options
	}{
		{
			name:       "probability above one",
			transforms: []transform.Transform{transform.HorizontalFlip{P: 1.5}},
		},
		{
			name: "bad keypoint format",
			opts: Options{Keypoints: &KeypointParams{Format: "xx"}},
		},
		{
			name: "bad bbox format",
			opts: Options{Boxes: &BoxParams{Format: "corners"}},
		},
		{
			name: "reserved label field",
			opts: Options{Keypoints: &KeypointParams{Format: "xy", LabelFields: []string{"image"}}},
		},
		{
			name: "duplicate label field",
			opts: Options{
				Keypoints: &KeypointParams{Format: "xy", LabelFields: []string{"cls"}},
				Boxes:     &BoxParams{Format: "pascal_voc", LabelFields: []string{"cls"}},
			},
		},
		{
			name: "additional target unknown kind",
			opts: Options{AdditionalTargets: map[string]string{"depth": "tensor"}},
		},
		{
			name: "additional target reserved name",
			opts: Options{AdditionalTargets: map[string]string{"mask": "mask"}},
		},
		{
			name: "additional keypoints without params",
			opts: Options{AdditionalTargets: map[string]string{"kps2": "keypoints"}},
		},
		{
			name: "additional bboxes without params",
			opts: Options{AdditionalTargets: map[string]string{"boxes2": "bboxes"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.transforms, tt.opts)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidConfig {
				t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestRunInputErrors(t *testing.T) {
	p, err := Compose(nil, Options{
		Keypoints: &KeypointParams{Format: "xy", LabelFields: []string{"cls"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	img := testImage(10, 10)

	tests := []struct {
		name string
		data Data
		code errors.Code
	}{
		{
			name: "missing image",
			data: Data{Keypoints: [][]float64{{1, 2}}, Labels: map[string][]any{"cls": {"a"}}},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "label field missing",
			data: Data{Image: img, Keypoints: [][]float64{{1, 2}}},
			code: errors.ErrCodeTargetMismatch,
		},
		{
			name: "label length mismatch",
			data: Data{Image: img, Keypoints: [][]float64{{1, 2}},
				Labels: map[string][]any{"cls": {"a", "b"}}},
			code: errors.ErrCodeTargetMismatch,
		},
		{
			name: "undeclared label field",
			data: Data{Image: img, Keypoints: [][]float64{{1, 2}},
				Labels: map[string][]any{"cls": {"a"}, "color": {"red"}}},
			code: errors.ErrCodeTargetMismatch,
		},
		{
			name: "bboxes without params",
			data: Data{Image: img, Bboxes: [][]float64{{1, 1, 5, 5}}},
			code: errors.ErrCodeInvalidConfig,
		},
		{
			name: "undeclared additional target",
			data: Data{Image: img, Additional: map[string]any{"image2": img}},
			code: errors.ErrCodeInvalidConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Run(tt.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if code := errors.GetCode(err); code != tt.code {
				t.Errorf("error code = %q, want %q", code, tt.code)
			}
		})
	}
}

func TestRunNoOpIdentity(t *testing.T) {
	p, err := Compose([]transform.Transform{transform.NoOp{P: 1}}, Options{
		Keypoints: &KeypointParams{Format: "xyas"},
		Boxes:     &BoxParams{Format: "coco"},
		Seed:      1,
	})
	if err != nil {
		t.Fatal(err)
	}
	kps := [][]float64{{10, 20, 45, 2}, {99, 99, 0, 1}}
	boxes := [][]float64{{10, 10, 30, 40}}
	out, err := p.Run(Data{Image: testImage(100, 100), Keypoints: kps, Bboxes: boxes})
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(out.Keypoints, kps, 1e-9) {
		t.Errorf("keypoints changed under no-op: %v", out.Keypoints)
	}
	if !approxEqual(out.Bboxes, boxes, 1e-9) {
		t.Errorf("bboxes changed under no-op: %v", out.Bboxes)
	}
}

func TestRunHorizontalFlip(t *testing.T) {
	p, err := Compose([]transform.Transform{transform.HorizontalFlip{P: 1}}, Options{
		Keypoints: &KeypointParams{Format: "xy"},
		Seed:      1,
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Run(Data{
		Image:     testImage(100, 100),
		Keypoints: [][]float64{{10, 20}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float64{{89, 20}}
	if !approxEqual(out.Keypoints, want, 1e-9) {
		t.Errorf("flipped keypoints = %v, want %v", out.Keypoints, want)
	}
}

func TestRunCenterCropSyncsLabels(t *testing.T) {
	p, err := Compose([]transform.Transform{
		transform.CenterCrop{P: 1, Height: 50, Width: 50},
	}, Options{
		Keypoints: &KeypointParams{Format: "xy", LabelFields: []string{"cls"}},
		Seed:      1,
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Run(Data{
		Image:     testImage(100, 100),
		Keypoints: [][]float64{{50, 50}, {0, 0}, {55, 55}},
		Labels:    map[string][]any{"cls": {"a", "b", "c"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	wantKP := [][]float64{{25, 25}, {30, 30}}
	if !approxEqual(out.Keypoints, wantKP, 1e-9) {
		t.Errorf("cropped keypoints = %v, want %v", out.Keypoints, wantKP)
	}
	wantCls := []any{"a", "c"}
	if !reflect.DeepEqual(out.Labels["cls"], wantCls) {
		t.Errorf("labels = %v, want %v", out.Labels["cls"], wantCls)
	}
	if rows, cols := out.Image.Bounds().Dy(), out.Image.Bounds().Dx(); rows != 50 || cols != 50 {
		t.Errorf("image dims = %dx%d, want 50x50", cols, rows)
	}
}

func TestRunCenterCropTooSmall(t *testing.T) {
	p, err := Compose([]transform.Transform{
		transform.CenterCrop{P: 1, Height: 50, Width: 50},
	}, Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Run(Data{Image: testImage(40, 40)})
	if err == nil {
		t.Fatal("expected error for image smaller than crop")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidInput)
	}
}

func TestRunAdditionalTargetsShareParams(t *testing.T) {
	p, err := Compose([]transform.Transform{
		transform.RandomRotate90{P: 1},
	}, Options{
		Keypoints:         &KeypointParams{Format: "xy"},
		AdditionalTargets: map[string]string{"kps2": "keypoints", "image2": "image"},
		Seed:              7,
	})
	if err != nil {
		t.Fatal(err)
	}
	kps := [][]float64{{10, 20}, {70, 30}}
	for i := 0; i < 5; i++ {
		out, err := p.Run(Data{
			Image:     testImage(100, 100),
			Keypoints: kps,
			Additional: map[string]any{
				"kps2":   kps,
				"image2": testImage(100, 100),
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		// The same sampled factor must reach every keypoint stream.
		got, ok := out.Additional["kps2"].([][]float64)
		if !ok {
			t.Fatalf("kps2 has type %T", out.Additional["kps2"])
		}
		if !approxEqual(got, out.Keypoints, 1e-9) {
			t.Fatalf("run %d: kps2 = %v, keypoints = %v", i, got, out.Keypoints)
		}
		if _, ok := out.Additional["image2"].(image.Image); !ok {
			t.Fatalf("image2 has type %T", out.Additional["image2"])
		}
	}
}

func TestRunCoarseDropoutFullImage(t *testing.T) {
	p, err := Compose([]transform.Transform{
		transform.CoarseDropout{
			P:        1,
			MinHoles: 1, MaxHoles: 1,
			MinHeight: 100, MaxHeight: 100,
			MinWidth: 100, MaxWidth: 100,
		},
	}, Options{
		Keypoints: &KeypointParams{Format: "xy", LabelFields: []string{"cls"}},
		Seed:      1,
	})
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Run(Data{
		Image:     testImage(100, 100),
		Keypoints: [][]float64{{10, 10}, {90, 90}},
		Labels:    map[string][]any{"cls": {"a", "b"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Keypoints == nil || len(out.Keypoints) != 0 {
		t.Errorf("keypoints = %v, want empty non-nil slice", out.Keypoints)
	}
	if len(out.Labels["cls"]) != 0 {
		t.Errorf("labels = %v, want empty", out.Labels["cls"])
	}
}

func TestRunSeedReproducible(t *testing.T) {
	build := func() *Pipeline {
		p, err := Compose([]transform.Transform{
			transform.HorizontalFlip{P: 0.5},
			transform.RandomRotate90{P: 0.5},
			transform.Rotate{P: 0.5, Limit: 30},
		}, Options{
			Keypoints: &KeypointParams{Format: "xy"},
			Seed:      99,
		})
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	a, b := build(), build()
	in := Data{Image: testImage(80, 60), Keypoints: [][]float64{{10, 20}, {40, 50}}}
	for i := 0; i < 10; i++ {
		outA, err := a.Run(in)
		if err != nil {
			t.Fatal(err)
		}
		outB, err := b.Run(in)
		if err != nil {
			t.Fatal(err)
		}
		if !approxEqual(outA.Keypoints, outB.Keypoints, 1e-12) {
			t.Fatalf("run %d: diverged: %v vs %v", i, outA.Keypoints, outB.Keypoints)
		}
	}
}

func TestRunExternalRNG(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p, err := Compose([]transform.Transform{transform.NoOp{P: 1}}, Options{RNG: rng})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(Data{Image: testImage(4, 4)}); err != nil {
		t.Fatal(err)
	}
}

func TestRunMaskFollowsImage(t *testing.T) {
	p, err := Compose([]transform.Transform{
		transform.CenterCrop{P: 1, Height: 30, Width: 20},
	}, Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	out, err := p.Run(Data{Image: testImage(100, 100), Mask: testImage(100, 100)})
	if err != nil {
		t.Fatal(err)
	}
	if out.Mask == nil {
		t.Fatal("mask missing from output")
	}
	if rows, cols := out.Mask.Bounds().Dy(), out.Mask.Bounds().Dx(); rows != 30 || cols != 20 {
		t.Errorf("mask dims = %dx%d, want 20x30", cols, rows)
	}
}
