package cascade

import (
	"image"
	"math"
	"testing"
)

func TestInitLevelsScaleProgression(t *testing.T) {

	d := newTestDetection(t, 0)

	cfg := InitConfig{ScaleFactor: 2.0}

	if err := d.Init(image.Pt(100, 100), cfg); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer d.Close()

	// the 8x8 window scaled by 1, 2, 4 and 8 fits a 100 pixel image,
	// scaled by 16 it does not
	if len(d.levels) != 4 {
		t.Fatalf("got %d levels, want 4", len(d.levels))
	}

	scale := 1.0

	for i, lv := range d.levels {
		if lv.scale != scale {
			t.Errorf("level %d scale = %v, want %v", i, lv.scale, scale)
		}

		wantDims := image.Pt(int(100/scale), int(100/scale))
		if lv.dims != wantDims {
			t.Errorf("level %d dims = %v, want %v", i, lv.dims, wantDims)
		}

		if lv.src.Rect.Size() != wantDims {
			t.Errorf("level %d buffer size = %v, want %v", i, lv.src.Rect.Size(), wantDims)
		}

		// the interleaved scan is only used near the original resolution
		if want := scale <= 2.0; lv.throughColumn != want {
			t.Errorf("level %d throughColumn = %v, want %v", i, lv.throughColumn, want)
		}

		scale *= 2
	}
}

func TestInitLevelsSizeBounds(t *testing.T) {

	d := newTestDetection(t, 0)

	cfg := InitConfig{
		ScaleFactor: 2.0,
		SizeMin:     image.Pt(20, 20),
		SizeMax:     image.Pt(40, 40),
	}

	if err := d.Init(image.Pt(100, 100), cfg); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer d.Close()

	// of the window sizes 8, 16, 32 and 64 only 32 lies inside the bounds
	if len(d.levels) != 1 {
		t.Fatalf("got %d levels, want 1", len(d.levels))
	}

	if d.levels[0].scale != 4.0 {
		t.Errorf("level scale = %v, want 4", d.levels[0].scale)
	}
}

func TestInitLevelsWindowBounds(t *testing.T) {

	d := newTestDetection(t, 0)

	if err := d.Init(image.Pt(200, 150), InitConfig{}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer d.Close()

	if len(d.levels) == 0 {
		t.Fatal("no levels built")
	}

	window := d.data[0].cascade.WindowSize()

	for i, lv := range d.levels {
		// every materialized level can hold at least one window
		ws := scalePoint(window, lv.scale)
		if ws.X > 200 || ws.Y > 150 {
			t.Errorf("level %d window %v exceeds the image", i, ws)
		}

		// scales grow strictly
		if i > 0 && lv.scale <= d.levels[i-1].scale {
			t.Errorf("level %d scale %v not above previous %v",
				i, lv.scale, d.levels[i-1].scale)
		}

		// neighboring scales differ by the configured factor
		if i > 0 {
			ratio := lv.scale / d.levels[i-1].scale
			if math.Abs(ratio-DefaultScaleFactor) > 1e-9 {
				t.Errorf("level %d scale ratio = %v, want %v",
					i, ratio, DefaultScaleFactor)
			}
		}
	}
}

func TestLevelROIShrinksScanRect(t *testing.T) {

	d := newTestDetection(t, 0)

	// region of interest covering only the lower right quadrant
	roi := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 32; y < 64; y++ {
		for x := 32; x < 64; x++ {
			roi.Pix[y*roi.Stride+x] = 255
		}
	}

	if err := d.Init(image.Pt(64, 64), InitConfig{ROI: roi}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	defer d.Close()

	lv := d.levels[0]

	full := image.Rect(0, 0, lv.dims.X, lv.dims.Y)
	if lv.rect == full {
		t.Errorf("level rect %v not shrunk below %v", lv.rect, full)
	}

	if lv.rect.Min.X < 31 || lv.rect.Min.Y < 31 {
		t.Errorf("level rect %v extends outside the region of interest", lv.rect)
	}
}
