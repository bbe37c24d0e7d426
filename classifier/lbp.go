package classifier

import (
	"image"

	"github.com/detkit/go-cascade/imaging"
)

// lbpNeighbors lists the eight neighbor cells of the 3x3 feature grid in
// clockwise order starting at the top-left, as cell grid coordinates.  The
// code bit for the first entry is the most significant.
var lbpNeighbors = [8]image.Point{
	{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1},
}

// lbpEngine evaluates an LBP cascade with 32-bit integer cell sums.
type lbpEngine struct {
	cascade *Cascade
	sum     *imaging.Integral
	step    int
}

func (e *lbpEngine) WindowSize() image.Point {
	return e.cascade.window
}

func (e *lbpEngine) Family() Family {
	return LBP
}

func (e *lbpEngine) ScanRowBand(mask *image.Gray, rect image.Rectangle, dst *image.Gray) {

	for y := rect.Min.Y; y < rect.Max.Y; y += e.step {
		for x := rect.Min.X; x < rect.Max.X; x += e.step {
			if !maskAt(mask, x, y, e.cascade.window) {
				continue
			}
			if classifyLBP(e.cascade, x, y, e.codeAt) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
}

// codeAt computes the 8-bit pattern code of a feature at window position
// (x, y): each neighbor cell sum is compared against the center cell sum.
func (e *lbpEngine) codeAt(f *lbpFeature, x, y int) uint8 {

	cw, ch := f.cell.Dx(), f.cell.Dy()
	ox, oy := x+f.cell.Min.X, y+f.cell.Min.Y

	center := int32(e.cellSum(ox+cw, oy+ch, cw, ch))

	var code uint8
	for k, n := range lbpNeighbors {
		if int32(e.cellSum(ox+n.X*cw, oy+n.Y*ch, cw, ch)) >= center {
			code |= 1 << (7 - k)
		}
	}

	return code
}

func (e *lbpEngine) cellSum(x, y, w, h int) uint32 {
	return e.sum.RectSum(image.Rect(x, y, x+w, y+h))
}

// lbpEngine16 evaluates an LBP cascade with 16-bit fixed point cell sums.
// It is selected for cascades whose cell sums are known to fit in an int16,
// where the narrower arithmetic gives the same comparisons as the 32-bit
// path.
type lbpEngine16 struct {
	cascade *Cascade
	sum     *imaging.Integral
	step    int
}

func (e *lbpEngine16) WindowSize() image.Point {
	return e.cascade.window
}

func (e *lbpEngine16) Family() Family {
	return LBP
}

func (e *lbpEngine16) ScanRowBand(mask *image.Gray, rect image.Rectangle, dst *image.Gray) {

	for y := rect.Min.Y; y < rect.Max.Y; y += e.step {
		for x := rect.Min.X; x < rect.Max.X; x += e.step {
			if !maskAt(mask, x, y, e.cascade.window) {
				continue
			}
			if classifyLBP(e.cascade, x, y, e.codeAt) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
}

func (e *lbpEngine16) codeAt(f *lbpFeature, x, y int) uint8 {

	cw, ch := f.cell.Dx(), f.cell.Dy()
	ox, oy := x+f.cell.Min.X, y+f.cell.Min.Y

	center := int16(e.sum.RectSum(image.Rect(ox+cw, oy+ch, ox+2*cw, oy+2*ch)))

	var code uint8
	for k, n := range lbpNeighbors {
		cx, cy := ox+n.X*cw, oy+n.Y*ch
		if int16(e.sum.RectSum(image.Rect(cx, cy, cx+cw, cy+ch))) >= center {
			code |= 1 << (7 - k)
		}
	}

	return code
}

// classifyLBP runs all stages of an LBP cascade at window position (x, y)
// using the supplied code function.
func classifyLBP(c *Cascade, x, y int, codeAt func(*lbpFeature, int, int) uint8) bool {

	for i := range c.stages {
		st := &c.stages[i]

		total := 0.0
		for j := range st.stumps {
			wk := &st.stumps[j]

			code := codeAt(&c.lbpFeatures[wk.feature], x, y)

			if wk.subset[code>>5]&(1<<(code&31)) != 0 {
				total += wk.left
			} else {
				total += wk.right
			}
		}

		if total < st.threshold {
			return false
		}
	}

	return true
}
