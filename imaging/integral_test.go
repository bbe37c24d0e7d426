package imaging

import (
	"image"
	"math/rand"
	"testing"
)

// randomGray builds a deterministic pseudo random grayscale image
func randomGray(w, h int, seed int64) *image.Gray {

	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))

	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}

	return img
}

// bruteRectSum sums the pixels of the half open rectangle directly
func bruteRectSum(img *image.Gray, r image.Rectangle) uint32 {

	var total uint32

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			total += uint32(img.GrayAt(x, y).Y)
		}
	}

	return total
}

// bruteSquareSum sums the squared pixel values of the rectangle directly
func bruteSquareSum(img *image.Gray, r image.Rectangle) uint32 {

	var total uint32

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := uint32(img.GrayAt(x, y).Y)
			total += v * v
		}
	}

	return total
}

// bruteTiltedSum sums the pixels of the 45 degree rotated rectangle with its
// top corner at (x, y), extending w steps down-right and h steps down-left.
// A pixel (px, py) belongs to the rotated rectangle when its diagonal
// coordinates u=px-py and v=px+py fall in the band spanned by the corner.
func bruteTiltedSum(img *image.Gray, x, y, w, h int) uint32 {

	var total uint32

	for py := 0; py < img.Rect.Dy(); py++ {
		for px := 0; px < img.Rect.Dx(); px++ {
			u := px - py
			v := px + py

			if u >= x-y-2*h+1 && u <= x-y && v >= x+y && v <= x+y+2*w-1 {
				total += uint32(img.GrayAt(px, py).Y)
			}
		}
	}

	return total
}

func TestRectSum(t *testing.T) {

	img := randomGray(23, 17, 1)
	sum := NewIntegral(img.Rect.Size())
	sqsum := NewIntegral(img.Rect.Size())

	IntegralImage(img, sum, sqsum, nil)

	rects := []image.Rectangle{
		image.Rect(0, 0, 23, 17),
		image.Rect(0, 0, 1, 1),
		image.Rect(5, 3, 12, 11),
		image.Rect(22, 16, 23, 17),
		image.Rect(7, 7, 7, 7),
	}

	for _, r := range rects {
		if got, want := sum.RectSum(r), bruteRectSum(img, r); got != want {
			t.Errorf("RectSum(%v) = %d, want %d", r, got, want)
		}

		if got, want := sqsum.RectSum(r), bruteSquareSum(img, r); got != want {
			t.Errorf("sqsum RectSum(%v) = %d, want %d", r, got, want)
		}
	}
}

func TestRectSumWithoutSquares(t *testing.T) {

	img := randomGray(9, 9, 2)
	sum := NewIntegral(img.Rect.Size())

	IntegralImage(img, sum, nil, nil)

	r := image.Rect(2, 1, 8, 7)

	if got, want := sum.RectSum(r), bruteRectSum(img, r); got != want {
		t.Errorf("RectSum(%v) = %d, want %d", r, got, want)
	}
}

func TestTiltedSum(t *testing.T) {

	img := randomGray(20, 20, 3)
	sum := NewIntegral(img.Rect.Size())
	tilted := NewIntegral(img.Rect.Size())

	IntegralImage(img, sum, nil, tilted)

	// every (x, y, w, h) combination must keep the four looked up corners
	// inside the table
	cases := []struct{ x, y, w, h int }{
		{1, 0, 1, 1},
		{2, 0, 2, 1},
		{3, 1, 2, 2},
		{5, 2, 4, 3},
		{10, 0, 5, 5},
		{8, 6, 3, 4},
	}

	for _, c := range cases {
		got := tilted.TiltedSum(c.x, c.y, c.w, c.h)
		want := bruteTiltedSum(img, c.x, c.y, c.w, c.h)

		if got != want {
			t.Errorf("TiltedSum(%d,%d,%d,%d) = %d, want %d",
				c.x, c.y, c.w, c.h, got, want)
		}
	}
}

func TestTiltedSumUniformImage(t *testing.T) {

	// on a constant image the rotated rectangle sum is the pixel count times
	// the constant
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	Fill(img, 1)

	tilted := NewIntegral(img.Rect.Size())
	sum := NewIntegral(img.Rect.Size())

	IntegralImage(img, sum, nil, tilted)

	// a w x h rotated rectangle covers 2*w*h pixels
	if got, want := tilted.TiltedSum(8, 2, 3, 2), uint32(2*3*2); got != want {
		t.Errorf("TiltedSum on uniform image = %d, want %d", got, want)
	}
}
