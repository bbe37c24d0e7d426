package classifier

import (
	"fmt"
	"image"

	"github.com/detkit/go-cascade/imaging"
)

// Engine evaluates one cascade over the integral buffers it was bound to at
// creation.  Engines are small per-level instances; the cascade description
// itself is shared and immutable.
//
// An engine is safe for concurrent ScanRowBand calls on disjoint row bands
// of the same destination, which is how the detector splits work across its
// worker pool.
type Engine interface {
	// WindowSize returns the native classifier window size
	WindowSize() image.Point
	// Family returns the cascade feature family
	Family() Family
	// ScanRowBand slides the classifier window over rect, skipping
	// positions whose window center is masked out, and writes a non-zero
	// byte into dst at every window top-left position the cascade accepts.
	// rect holds window top-left positions and must keep the window inside
	// the buffers the engine was bound to.
	ScanRowBand(mask *image.Gray, rect image.Rectangle, dst *image.Gray)
}

// NewEngine binds cascade c to a level's integral buffers and returns the
// evaluation engine for it.  sqsum is required for Haar cascades, tilted for
// cascades with tilted features.  throughColumn selects the interleaved scan
// order evaluating every second row and column.  fixedPoint selects 16-bit
// evaluation and requires c.CanInt16().
func NewEngine(c *Cascade, sum, sqsum, tilted *imaging.Integral,
	throughColumn, fixedPoint bool) (Engine, error) {

	if c == nil {
		return nil, fmt.Errorf("nil cascade")
	}

	if sum == nil {
		return nil, fmt.Errorf("sum table is required")
	}

	step := 1
	if throughColumn {
		step = 2
	}

	switch c.family {
	case Haar:
		if sqsum == nil {
			return nil, fmt.Errorf("haar cascade requires a squared sum table")
		}
		if c.hasTilted && tilted == nil {
			return nil, fmt.Errorf("cascade with tilted features requires a tilted sum table")
		}
		return newHaarEngine(c, sum, sqsum, tilted, step), nil

	case LBP:
		if fixedPoint {
			if !c.canInt16 {
				return nil, fmt.Errorf("cascade does not support fixed point evaluation")
			}
			return &lbpEngine16{cascade: c, sum: sum, step: step}, nil
		}
		return &lbpEngine{cascade: c, sum: sum, step: step}, nil
	}

	return nil, fmt.Errorf("unknown cascade family %d", c.family)
}

// maskAt reports whether the mask admits a window whose top-left corner is
// at (x, y).  The mask applies to the window center.
func maskAt(mask *image.Gray, x, y int, window image.Point) bool {
	return mask.Pix[(y+window.Y/2)*mask.Stride+x+window.X/2] != 0
}
