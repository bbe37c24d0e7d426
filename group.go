package cascade

import (
	"image"
	"math"
)

// similar reports whether two elementary detections are close enough to
// belong to one cluster: each of the four edge coordinate deltas must stay
// within the tolerance derived from the smaller of the two rectangles.
func similar(a, b image.Rectangle, sizeDifferenceMax float64) bool {

	delta := sizeDifferenceMax * 0.5 *
		float64(minInt(a.Dx(), b.Dx())+minInt(a.Dy(), b.Dy()))

	return float64(absInt(a.Min.X-b.Min.X)) <= delta &&
		float64(absInt(a.Min.Y-b.Min.Y)) <= delta &&
		float64(absInt(a.Max.X-b.Max.X)) <= delta &&
		float64(absInt(a.Max.Y-b.Max.Y)) <= delta
}

// disjointSet is a union-find structure with union by rank and path
// compression over the index space [0, n).
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {

	ds := &disjointSet{
		parent: make([]int, n),
		rank:   make([]int, n),
	}

	for i := range ds.parent {
		ds.parent[i] = i
	}

	return ds
}

func (ds *disjointSet) find(i int) int {

	root := i
	for ds.parent[root] != root {
		root = ds.parent[root]
	}

	for ds.parent[i] != root {
		ds.parent[i], i = root, ds.parent[i]
	}

	return root
}

func (ds *disjointSet) union(a, b int) {

	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}

	if ds.rank[ra] < ds.rank[rb] {
		ra, rb = rb, ra
	}

	ds.parent[rb] = ra
	if ds.rank[ra] == ds.rank[rb] {
		ds.rank[ra]++
	}
}

// partition groups the detections into equivalence classes of the similar
// relation, comparing all pairs, and returns a class label per detection
// and the class count.  Labels are assigned in first occurrence order so
// the result is deterministic.
func partition(objects []Object, sizeDifferenceMax float64) ([]int, int) {

	n := len(objects)
	ds := newDisjointSet(n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if similar(objects[i].Rect, objects[j].Rect, sizeDifferenceMax) {
				ds.union(i, j)
			}
		}
	}

	labels := make([]int, n)
	classOf := make(map[int]int)

	for i := 0; i < n; i++ {
		root := ds.find(i)

		cls, ok := classOf[root]
		if !ok {
			cls = len(classOf)
			classOf[root] = cls
		}

		labels[i] = cls
	}

	return labels, len(classOf)
}

// groupObjects clusters the elementary detections of one tag and appends
// the merged results to dst.  Each cluster becomes one object whose
// rectangle is the mean of its members and whose weight is the member
// count.  Clusters below groupSizeMin are dropped, and a final containment
// pass lets a denser cluster absorb a weaker one lying inside its expanded
// rectangle.
func groupObjects(dst *[]Object, src []Object, groupSizeMin int, sizeDifferenceMax float64) {

	if groupSizeMin <= 0 || len(src) < groupSizeMin {
		return
	}

	labels, nclasses := partition(src, sizeDifferenceMax)

	sums := make([][4]int, nclasses)
	buffer := make([]Object, nclasses)

	for i, o := range src {
		cls := labels[i]
		sums[cls][0] += o.Rect.Min.X
		sums[cls][1] += o.Rect.Min.Y
		sums[cls][2] += o.Rect.Max.X
		sums[cls][3] += o.Rect.Max.Y
		buffer[cls].Weight++
		buffer[cls].Tag = o.Tag
	}

	for i := range buffer {
		w := float64(buffer[i].Weight)
		buffer[i].Rect = image.Rect(
			int(math.Round(float64(sums[i][0])/w)),
			int(math.Round(float64(sums[i][1])/w)),
			int(math.Round(float64(sums[i][2])/w)),
			int(math.Round(float64(sums[i][3])/w)),
		)
	}

	for i := range buffer {
		r1 := buffer[i].Rect
		n1 := buffer[i].Weight

		if n1 < groupSizeMin {
			continue
		}

		absorbed := false
		for j := range buffer {
			if j == i || buffer[j].Weight < groupSizeMin {
				continue
			}

			n2 := buffer[j].Weight
			r2 := buffer[j].Rect

			dx := int(math.Round(float64(r2.Dx()) * sizeDifferenceMax))
			dy := int(math.Round(float64(r2.Dy()) * sizeDifferenceMax))

			// intentionally asymmetric: a small cluster is dropped
			// even when the absorbing cluster is not much larger
			if (n2 > maxInt(3, n1) || n1 < 3) &&
				r1.Min.X >= r2.Min.X-dx && r1.Min.Y >= r2.Min.Y-dy &&
				r1.Max.X <= r2.Max.X+dx && r1.Max.Y <= r2.Max.Y+dy {
				absorbed = true
				break
			}
		}

		if !absorbed {
			*dst = append(*dst, buffer[i])
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
