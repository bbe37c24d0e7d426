package imaging

import (
	"image"
)

// Fill sets every pixel of img to v.
func Fill(img *image.Gray, v uint8) {

	w := img.Rect.Dx()

	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x := range row {
			row[x] = v
		}
	}
}

// FillRect sets the pixels of img inside r to v.  The rectangle is clipped
// to the image bounds.
func FillRect(img *image.Gray, r image.Rectangle, v uint8) {

	r = r.Intersect(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[y*img.Stride+r.Min.X : y*img.Stride+r.Max.X]
		for x := range row {
			row[x] = v
		}
	}
}

// Binarize thresholds img in place, setting pixels greater than threshold to
// 255 and all others to 0.
func Binarize(img *image.Gray, threshold uint8) {

	w := img.Rect.Dx()

	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		for x, v := range row {
			if v > threshold {
				row[x] = 255
			} else {
				row[x] = 0
			}
		}
	}
}

// ShrinkToMask returns the bounding rectangle of the non-zero pixels of mask
// inside bound.  The zero rectangle is returned when no pixel inside bound
// is set.
func ShrinkToMask(mask *image.Gray, bound image.Rectangle) image.Rectangle {

	bound = bound.Intersect(image.Rect(0, 0, mask.Rect.Dx(), mask.Rect.Dy()))

	shrunk := image.Rectangle{}
	first := true

	for y := bound.Min.Y; y < bound.Max.Y; y++ {
		row := mask.Pix[y*mask.Stride+bound.Min.X : y*mask.Stride+bound.Max.X]
		for x, v := range row {
			if v == 0 {
				continue
			}
			p := image.Pt(bound.Min.X+x, y)
			if first {
				shrunk = image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}
				first = false
			} else {
				shrunk = shrunk.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
			}
		}
	}

	return shrunk
}

// AndMask writes the bitwise AND of a and b into dst.  All three images must
// have the same dimensions; dst may alias a or b.
func AndMask(dst, a, b *image.Gray) {

	w := dst.Rect.Dx()

	for y := 0; y < dst.Rect.Dy(); y++ {
		arow := a.Pix[y*a.Stride : y*a.Stride+w]
		brow := b.Pix[y*b.Stride : y*b.Stride+w]
		drow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range drow {
			drow[x] = arow[x] & brow[x]
		}
	}
}
