package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// ToGray converts any image to an 8-bit grayscale image with zero based
// bounds.  If the source is already such an image it is returned as is
// without copying.
func ToGray(src image.Image) *image.Gray {

	if g, ok := src.(*image.Gray); ok && g.Rect.Min == image.Pt(0, 0) {
		return g
	}

	dst := image.NewGray(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	xdraw.Draw(dst, dst.Rect, src, src.Bounds().Min, xdraw.Src)

	return dst
}

// Resize scales src into dst using bilinear interpolation.  When source and
// destination have the same dimensions the pixels are copied through
// unchanged.
func Resize(dst, src *image.Gray) {

	if dst.Rect.Size() == src.Rect.Size() {
		if dst.Stride == src.Stride {
			copy(dst.Pix, src.Pix)
			return
		}

		for y := 0; y < dst.Rect.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+dst.Rect.Dx()],
				src.Pix[y*src.Stride:y*src.Stride+src.Rect.Dx()])
		}
		return
	}

	xdraw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
}
