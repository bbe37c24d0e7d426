package cascade

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
)

// MergeRegions unions a set of motion regions and returns the bounding
// rectangles of the merged areas.  Overlapping or touching rectangles
// collapse into one region, which keeps the region list passed to Detect
// short when a motion detector reports many fragments.
func MergeRegions(regions []image.Rectangle) []image.Rectangle {

	if len(regions) < 2 {
		return regions
	}

	cl := clipper.NewClipper(clipper.IoNone)

	for _, r := range regions {
		if r.Empty() {
			continue
		}

		// convert the rectangle to a Clipper Path
		path := clipper.Path{
			&clipper.IntPoint{X: clipper.CInt(r.Min.X), Y: clipper.CInt(r.Min.Y)},
			&clipper.IntPoint{X: clipper.CInt(r.Max.X), Y: clipper.CInt(r.Min.Y)},
			&clipper.IntPoint{X: clipper.CInt(r.Max.X), Y: clipper.CInt(r.Max.Y)},
			&clipper.IntPoint{X: clipper.CInt(r.Min.X), Y: clipper.CInt(r.Max.Y)},
		}

		cl.AddPath(path, clipper.PtSubject, true)
	}

	// execute the union operation
	solution, ok := cl.Execute1(clipper.CtUnion, clipper.PftNonZero,
		clipper.PftNonZero)

	if !ok {
		return regions
	}

	// take the bounding box of each merged polygon
	var merged []image.Rectangle

	for _, path := range solution {
		if len(path) == 0 {
			continue
		}

		bound := image.Rect(int(path[0].X), int(path[0].Y),
			int(path[0].X), int(path[0].Y))

		for _, pt := range path[1:] {
			bound.Min.X = minInt(bound.Min.X, int(pt.X))
			bound.Min.Y = minInt(bound.Min.Y, int(pt.Y))
			bound.Max.X = maxInt(bound.Max.X, int(pt.X))
			bound.Max.Y = maxInt(bound.Max.Y, int(pt.Y))
		}

		merged = append(merged, bound)
	}

	return merged
}
