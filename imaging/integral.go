package imaging

import (
	"image"
)

// Integral holds a summed area table for an image.  The table carries a one
// pixel zero border, so a table built for a WxH image has (W+1)x(H+1)
// entries and the sum over the pixel rectangle [0,0)-(x,y) is read at (x,y).
//
// Entries use uint32 wrap around arithmetic.  Rectangle sums remain exact as
// long as the true sum over the queried rectangle fits in 32 bits, which
// always holds for classifier windows.
type Integral struct {
	// Width and Height are the table dimensions including the border
	Width  int
	Height int
	// Stride is the table row length
	Stride int
	// Pix holds the table values in row major order
	Pix []uint32
}

// NewIntegral allocates a zeroed table for an image of the given size.
func NewIntegral(size image.Point) *Integral {
	w, h := size.X+1, size.Y+1
	return &Integral{
		Width:  w,
		Height: h,
		Stride: w,
		Pix:    make([]uint32, w*h),
	}
}

// At returns the table entry at (x, y).
func (t *Integral) At(x, y int) uint32 {
	return t.Pix[y*t.Stride+x]
}

// RectSum returns the sum over the half open pixel rectangle r.
func (t *Integral) RectSum(r image.Rectangle) uint32 {
	return t.At(r.Max.X, r.Max.Y) + t.At(r.Min.X, r.Min.Y) -
		t.At(r.Max.X, r.Min.Y) - t.At(r.Min.X, r.Max.Y)
}

// TiltedSum returns the sum over a 45 degree rotated rectangle anchored with
// its top corner at pixel (x, y), extending w steps down-right and h steps
// down-left.  The table must have been filled by IntegralImage with a tilted
// destination.
func (t *Integral) TiltedSum(x, y, w, h int) uint32 {
	return t.At(x, y) + t.At(x+w-h, y+w+h) -
		t.At(x+w, y+w) - t.At(x-h, y+h)
}

// IntegralImage fills the summed area tables for src.  The sum table is
// required, sqsum (sums of squared pixel values) and tilted (45 degree
// rotated sums) are filled only when non-nil.  All destination tables must
// have been allocated for the source image size.
func IntegralImage(src *image.Gray, sum, sqsum, tilted *Integral) {

	w := src.Rect.Dx()
	h := src.Rect.Dy()

	// first table row is the zero border
	clearRow(sum, 0)

	if sqsum != nil {
		clearRow(sqsum, 0)
	}

	for y := 1; y <= h; y++ {
		row := src.Pix[(y-1)*src.Stride:]

		var rs, rsq uint32
		sum.Pix[y*sum.Stride] = 0

		if sqsum == nil {
			for x := 1; x <= w; x++ {
				v := uint32(row[x-1])
				rs += v
				sum.Pix[y*sum.Stride+x] = sum.Pix[(y-1)*sum.Stride+x] + rs
			}
			continue
		}

		sqsum.Pix[y*sqsum.Stride] = 0
		for x := 1; x <= w; x++ {
			v := uint32(row[x-1])
			rs += v
			rsq += v * v
			sum.Pix[y*sum.Stride+x] = sum.Pix[(y-1)*sum.Stride+x] + rs
			sqsum.Pix[y*sqsum.Stride+x] = sqsum.Pix[(y-1)*sqsum.Stride+x] + rsq
		}
	}

	if tilted != nil {
		tiltedIntegral(src, tilted)
	}
}

func clearRow(t *Integral, y int) {
	row := t.Pix[y*t.Stride : y*t.Stride+t.Width]
	for i := range row {
		row[i] = 0
	}
}

// tiltedIntegral fills the rotated sum table.  Entry (x, y) holds the sum of
// the pixels inside the upward opening triangle with its apex at (x, y-1),
// that is all pixels (x', y') with y' < y and |x'-x| <= y-1-y'.  The
// triangle splits into a left and right diagonal part, each of which grows
// by one pixel column per row, giving two linear recurrences over the
// per-column prefix sums.
func tiltedIntegral(src *image.Gray, t *Integral) {

	w := src.Rect.Dx()
	h := src.Rect.Dy()

	// column prefix sums for the current and previous table row
	cs := make([]uint32, w+1)
	csPrev := make([]uint32, w+1)

	left := make([]uint32, w+1)
	leftPrev := make([]uint32, w+1)

	// one sentinel entry past the right edge
	right := make([]uint32, w+2)
	rightPrev := make([]uint32, w+2)

	clearRow(t, 0)

	for y := 1; y <= h; y++ {
		csPrev, cs = cs, csPrev
		copy(cs, csPrev)
		row := src.Pix[(y-1)*src.Stride:]
		for x := 0; x < w; x++ {
			cs[x] += uint32(row[x])
		}

		leftPrev, left = left, leftPrev
		rightPrev, right = right, rightPrev

		left[0] = 0
		for x := 1; x <= w; x++ {
			left[x] = leftPrev[x-1] + csPrev[x-1]
		}

		right[w+1] = 0
		for x := w; x >= 0; x-- {
			right[x] = rightPrev[x+1] + cs[x]
		}

		out := t.Pix[y*t.Stride:]
		for x := 0; x <= w; x++ {
			out[x] = left[x] + right[x]
		}
	}
}
