package classifier

import (
	"image"
	"math"

	"github.com/detkit/go-cascade/imaging"
)

// haarEngine evaluates a Haar cascade in floating point.  Feature sums are
// normalized by the standard deviation of the window, read from the squared
// sum table, to compensate for lighting differences.
type haarEngine struct {
	cascade *Cascade
	sum     *imaging.Integral
	sqsum   *imaging.Integral
	tilted  *imaging.Integral
	step    int
	// norm is the normalization rectangle relative to the window origin,
	// the window inset by one pixel
	norm    image.Rectangle
	invArea float64
}

func newHaarEngine(c *Cascade, sum, sqsum, tilted *imaging.Integral, step int) *haarEngine {

	norm := image.Rect(1, 1, c.window.X-1, c.window.Y-1)

	return &haarEngine{
		cascade: c,
		sum:     sum,
		sqsum:   sqsum,
		tilted:  tilted,
		step:    step,
		norm:    norm,
		invArea: 1 / float64(norm.Dx()*norm.Dy()),
	}
}

func (e *haarEngine) WindowSize() image.Point {
	return e.cascade.window
}

func (e *haarEngine) Family() Family {
	return Haar
}

func (e *haarEngine) ScanRowBand(mask *image.Gray, rect image.Rectangle, dst *image.Gray) {

	for y := rect.Min.Y; y < rect.Max.Y; y += e.step {
		for x := rect.Min.X; x < rect.Max.X; x += e.step {
			if !maskAt(mask, x, y, e.cascade.window) {
				continue
			}
			if e.classify(x, y) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
}

// classify runs all stages at window position (x, y).
func (e *haarEngine) classify(x, y int) bool {

	p := image.Pt(x, y)
	nr := e.norm.Add(p)

	s := float64(e.sum.RectSum(nr))
	sq := float64(e.sqsum.RectSum(nr))

	mean := s * e.invArea
	variance := sq*e.invArea - mean*mean

	nrm := 1.0
	if variance > 0 {
		nrm = math.Sqrt(variance)
	}

	for i := range e.cascade.stages {
		st := &e.cascade.stages[i]

		total := 0.0
		for j := range st.stumps {
			wk := &st.stumps[j]

			if e.featureSum(&e.cascade.haarFeatures[wk.feature], p)*e.invArea <
				wk.threshold*nrm {
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

// featureSum evaluates the weighted rectangle sums of one feature at window
// position p.
func (e *haarEngine) featureSum(f *haarFeature, p image.Point) float64 {

	var v float64

	if f.tilted {
		for i := range f.rects {
			r := &f.rects[i]
			v += r.weight * float64(e.tilted.TiltedSum(
				p.X+r.rect.Min.X, p.Y+r.rect.Min.Y, r.rect.Dx(), r.rect.Dy()))
		}
		return v
	}

	for i := range f.rects {
		r := &f.rects[i]
		v += r.weight * float64(e.sum.RectSum(r.rect.Add(p)))
	}

	return v
}
