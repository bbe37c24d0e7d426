package cascade

import (
	"image"
	"testing"
)

func TestSimilar(t *testing.T) {

	base := image.Rect(100, 100, 150, 150)

	tests := []struct {
		name string
		a, b image.Rectangle
		want bool
	}{
		{"identical", base, base, true},
		{"small shift", base, base.Add(image.Pt(4, 4)), true},
		{"far apart", base, base.Add(image.Pt(100, 0)), false},
		{"size mismatch", base, image.Rect(100, 100, 250, 250), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similar(tt.a, tt.b, 0.2); got != tt.want {
				t.Errorf("similar(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPartition(t *testing.T) {

	objects := []Object{
		{Rect: image.Rect(100, 100, 150, 150)},
		{Rect: image.Rect(102, 101, 152, 151)},
		{Rect: image.Rect(300, 300, 340, 340)},
		{Rect: image.Rect(98, 99, 148, 149)},
	}

	labels, n := partition(objects, 0.2)

	if n != 2 {
		t.Fatalf("partition found %d classes, want 2", n)
	}

	if labels[0] != labels[1] || labels[0] != labels[3] {
		t.Errorf("close objects split across classes: %v", labels)
	}

	if labels[2] == labels[0] {
		t.Errorf("distant object joined class %d", labels[0])
	}
}

// jitter builds a cluster of detections around base where the offsets
// cancel out, so the cluster mean is exactly base
func jitter(base image.Rectangle, tag Tag) []Object {

	var objects []Object

	for _, off := range []int{-2, -1, 0, 1, 2} {
		objects = append(objects, Object{
			Rect:   base.Add(image.Pt(off, off)),
			Weight: 1,
			Tag:    tag,
		})
	}

	return objects
}

func TestGroupObjects(t *testing.T) {

	a := image.Rect(100, 100, 150, 150)
	b := image.Rect(300, 300, 340, 340)

	src := append(jitter(a, 7), jitter(b, 7)...)

	var got []Object
	groupObjects(&got, src, 3, 0.2)

	if len(got) != 2 {
		t.Fatalf("got %d objects, want 2", len(got))
	}

	for _, o := range got {
		if o.Weight != 5 {
			t.Errorf("object weight = %d, want 5", o.Weight)
		}
		if o.Tag != 7 {
			t.Errorf("object tag = %d, want 7", o.Tag)
		}
		if o.Rect != a && o.Rect != b {
			t.Errorf("object rect = %v, want %v or %v", o.Rect, a, b)
		}
	}
}

func TestGroupObjectsBelowMinimum(t *testing.T) {

	src := jitter(image.Rect(100, 100, 150, 150), 0)[:2]

	var got []Object
	groupObjects(&got, src, 3, 0.2)

	if len(got) != 0 {
		t.Errorf("got %d objects from 2 detections with minimum 3, want 0", len(got))
	}
}

func TestGroupObjectsSuppression(t *testing.T) {

	// a heavy cluster absorbs a lighter one whose rectangle lies inside
	// its expanded rectangle
	outer := jitter(image.Rect(0, 0, 100, 100), 0)
	outer = append(outer, Object{Rect: image.Rect(0, 0, 100, 100), Weight: 1, Tag: 0})

	inner := []Object{
		{Rect: image.Rect(30, 30, 50, 50), Weight: 1},
		{Rect: image.Rect(31, 31, 51, 51), Weight: 1},
		{Rect: image.Rect(29, 29, 49, 49), Weight: 1},
	}

	var got []Object
	groupObjects(&got, append(outer, inner...), 3, 0.2)

	if len(got) != 1 {
		t.Fatalf("got %d objects, want 1", len(got))
	}

	if got[0].Weight != 6 {
		t.Errorf("surviving object weight = %d, want 6", got[0].Weight)
	}
}

func TestGroupObjectsNoSuppressionAtEqualWeight(t *testing.T) {

	// with equal weights of at least 3 neither cluster absorbs the other
	outer := []Object{
		{Rect: image.Rect(0, 0, 100, 100), Weight: 1},
		{Rect: image.Rect(1, 1, 101, 101), Weight: 1},
		{Rect: image.Rect(-1, -1, 99, 99), Weight: 1},
	}

	inner := []Object{
		{Rect: image.Rect(30, 30, 50, 50), Weight: 1},
		{Rect: image.Rect(31, 31, 51, 51), Weight: 1},
		{Rect: image.Rect(29, 29, 49, 49), Weight: 1},
	}

	var got []Object
	groupObjects(&got, append(outer, inner...), 3, 0.2)

	if len(got) != 2 {
		t.Fatalf("got %d objects, want 2", len(got))
	}
}
