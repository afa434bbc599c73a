package bbox

import (
	"math"
	"testing"
)

func TestFlipHorizontal(t *testing.T) {
	b := Box{XMin: 0.1, YMin: 0.2, XMax: 0.4, YMax: 0.5}
	got := FlipHorizontal(b)
	want := Box{XMin: 0.6, YMin: 0.2, XMax: 0.9, YMax: 0.5}
	if !boxesClose(got, want, tol) {
		t.Errorf("FlipHorizontal = %+v, want %+v", got, want)
	}
	if !boxesClose(FlipHorizontal(got), b, tol) {
		t.Error("FlipHorizontal should be an involution")
	}
}

func TestFlipVertical(t *testing.T) {
	b := Box{XMin: 0.1, YMin: 0.2, XMax: 0.4, YMax: 0.5}
	got := FlipVertical(b)
	want := Box{XMin: 0.1, YMin: 0.5, XMax: 0.4, YMax: 0.8}
	if !boxesClose(got, want, tol) {
		t.Errorf("FlipVertical = %+v, want %+v", got, want)
	}
	if !boxesClose(FlipVertical(got), b, tol) {
		t.Error("FlipVertical should be an involution")
	}
}

func TestRotate90(t *testing.T) {
	b := Box{XMin: 0.1, YMin: 0.2, XMax: 0.4, YMax: 0.5}
	tests := []struct {
		factor int
		want   Box
	}{
		{0, b},
		{1, Box{XMin: 0.2, YMin: 0.6, XMax: 0.5, YMax: 0.9}},
		{2, Box{XMin: 0.6, YMin: 0.5, XMax: 0.9, YMax: 0.8}},
		{3, Box{XMin: 0.5, YMin: 0.1, XMax: 0.8, YMax: 0.4}},
	}

	for _, tt := range tests {
		got := Rotate90(b, tt.factor)
		if !boxesClose(got, tt.want, tol) {
			t.Errorf("Rotate90(factor=%d) = %+v, want %+v", tt.factor, got, tt.want)
		}
		// Boxes stay well-formed.
		if got.XMin > got.XMax || got.YMin > got.YMax {
			t.Errorf("Rotate90(factor=%d) produced inverted box %+v", tt.factor, got)
		}
	}
}

func TestRotate90GroupLaw(t *testing.T) {
	b := Box{XMin: 0.15, YMin: 0.25, XMax: 0.6, YMax: 0.7}
	for a := 0; a < 4; a++ {
		for c := 0; c < 4; c++ {
			step := Rotate90(Rotate90(b, a), c)
			direct := Rotate90(b, (a+c)%4)
			if !boxesClose(step, direct, tol) {
				t.Errorf("Rotate90 group law broken for a=%d c=%d", a, c)
			}
		}
	}
}

func TestRotate(t *testing.T) {
	b := Box{XMin: 0.2, YMin: 0.3, XMax: 0.6, YMax: 0.5}

	// Identity rotation.
	if got := Rotate(b, 0, 100, 100); !boxesClose(got, b, tol) {
		t.Errorf("Rotate 0° = %+v, want %+v", got, b)
	}

	// 180° about the center mirrors both axes on a square image.
	got := Rotate(b, 180, 100, 100)
	want := Box{XMin: 0.4, YMin: 0.5, XMax: 0.8, YMax: 0.7}
	if !boxesClose(got, want, 1e-7) {
		t.Errorf("Rotate 180° = %+v, want %+v", got, want)
	}

	// 90° CCW on a square image matches the quarter-turn operator.
	got = Rotate(b, 90, 100, 100)
	want = Rotate90(b, 1)
	if !boxesClose(got, want, 1e-7) {
		t.Errorf("Rotate 90° = %+v, want Rotate90 result %+v", got, want)
	}

	// A small rotation grows the AABB of an off-axis box, never shrinks it
	// below the original extent.
	got = Rotate(b, 10, 100, 200)
	if got.XMax-got.XMin < b.XMax-b.XMin-tol {
		t.Errorf("Rotate 10° AABB narrower than source: %+v", got)
	}
}

func TestCrop(t *testing.T) {
	// Box (25,25)-(75,75) in pixels on a 100x100 image, cropped to the
	// central 50x50 window: fills the window exactly.
	b := Box{XMin: 0.25, YMin: 0.25, XMax: 0.75, YMax: 0.75}
	got := Crop(b, 25, 25, 75, 75, 100, 100)
	want := Box{XMin: 0, YMin: 0, XMax: 1, YMax: 1}
	if !boxesClose(got, want, tol) {
		t.Errorf("Crop = %+v, want %+v", got, want)
	}

	// A box left of the window goes negative; clipping is the validator's
	// job.
	outside := Crop(Box{XMin: 0, YMin: 0, XMax: 0.1, YMax: 0.1}, 50, 50, 100, 100, 100, 100)
	if outside.XMax > 0 {
		t.Errorf("box left of crop window should be negative, got %+v", outside)
	}
}

func TestRotateAspectRatio(t *testing.T) {
	// On a non-square image, rotating a centered square box by 90° must
	// account for the aspect ratio: pixel width becomes pixel height.
	b := Box{XMin: 0.45, YMin: 0.4, XMax: 0.55, YMax: 0.6} // 20x20 px on 200x100
	got := Rotate(b, 90, 100, 200)
	pxW := (got.XMax - got.XMin) * 200
	pxH := (got.YMax - got.YMin) * 100
	if math.Abs(pxW-20) > 1e-6 || math.Abs(pxH-20) > 1e-6 {
		t.Errorf("rotated pixel extent = %.2fx%.2f, want 20x20", pxW, pxH)
	}
}
