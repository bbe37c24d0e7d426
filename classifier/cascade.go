// Package classifier loads boosted cascade classifier descriptions and
// evaluates them over integral image buffers.  Two interchange formats are
// supported, Haar and LBP feature cascades with stump weak classifiers.
// Tree based weak classifiers and the older pre-cascade description format
// are rejected at load time.
package classifier

import (
	"image"
)

// Family identifies the feature family of a cascade.
type Family int

const (
	// Haar cascades evaluate weighted rectangle sum features and require
	// squared sum tables for window normalization
	Haar Family = iota
	// LBP cascades evaluate local binary pattern codes over 3x3 cell grids
	LBP
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case Haar:
		return "HAAR"
	case LBP:
		return "LBP"
	}
	return "unknown"
}

// haarRect is one weighted rectangle of a Haar feature, relative to the
// window origin.
type haarRect struct {
	rect   image.Rectangle
	weight float64
}

// haarFeature is a group of 2 or 3 weighted rectangles.  Tilted features
// interpret each rectangle as a 45 degree rotated region.
type haarFeature struct {
	rects  []haarRect
	tilted bool
}

// lbpFeature is a single cell rectangle; the feature spans a 3x3 grid of
// such cells starting at the cell origin.
type lbpFeature struct {
	cell image.Rectangle
}

// stump is one weak classifier.  threshold is used by Haar stumps, subset by
// LBP stumps.
type stump struct {
	feature   int
	threshold float64
	subset    [8]uint32
	left      float64
	right     float64
}

// stage is one boosted rejection stage.
type stage struct {
	threshold float64
	stumps    []stump
}

// Cascade is an immutable parsed cascade description.  It carries no
// evaluation state; engines bound to integral buffers are created from it
// with NewEngine.
type Cascade struct {
	window       image.Point
	family       Family
	stages       []stage
	haarFeatures []haarFeature
	lbpFeatures  []lbpFeature
	hasTilted    bool
	canInt16     bool
}

// WindowSize returns the native detection window size the cascade was
// trained for.
func (c *Cascade) WindowSize() image.Point {
	return c.window
}

// Family returns the feature family of the cascade.
func (c *Cascade) Family() Family {
	return c.family
}

// HasTilted reports whether any feature uses 45 degree rotated rectangles,
// requiring a tilted integral table.
func (c *Cascade) HasTilted() bool {
	return c.hasTilted
}

// CanInt16 reports whether the cascade can be evaluated with 16-bit fixed
// point arithmetic.  This holds for LBP cascades whose cell sums fit in an
// int16.
func (c *Cascade) CanInt16() bool {
	return c.canInt16
}
