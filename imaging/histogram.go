package imaging

import (
	"image"

	"gonum.org/v1/gonum/floats"
)

// EqualizeHist normalizes the brightness histogram of src into dst, spreading
// the cumulative distribution over the full 8-bit range.  dst and src must
// have the same dimensions and may be the same image.
func EqualizeHist(dst, src *image.Gray) {

	w := src.Rect.Dx()
	h := src.Rect.Dy()

	hist := make([]float64, 256)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}

	cdf := make([]float64, 256)
	floats.CumSum(cdf, hist)

	total := cdf[255]
	if total == 0 {
		return
	}

	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(cdf[i]*255/total + 0.5)
	}

	for y := 0; y < h; y++ {
		srow := src.Pix[y*src.Stride : y*src.Stride+w]
		drow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range srow {
			drow[x] = lut[v]
		}
	}
}
