package geom

import "testing"

func TestIntersectLines(t *testing.T) {
	a, _ := LineThrough(V(0, 0), V(1, 0))
	b, _ := LineThrough(V(50, 50), V(0, 1))

	p, ok := IntersectLines(a, b)
	if !ok {
		t.Fatal("perpendicular lines reported as parallel")
	}
	if !AlmostEqual(p, V(50, 0), 1e-9) {
		t.Errorf("intersection = %v, want (50,0)", p)
	}
}

func TestIntersectLinesParallel(t *testing.T) {
	a, _ := LineThrough(V(0, 0), V(1, 1))
	b, _ := LineThrough(V(0, 10), V(2, 2))
	if _, ok := IntersectLines(a, b); ok {
		t.Error("parallel lines reported an intersection")
	}
}

func TestIntersectSegments(t *testing.T) {
	p, ok := IntersectSegments(V(0, 0), V(100, 0), V(50, -10), V(50, 10))
	if !ok {
		t.Fatal("crossing segments reported no intersection")
	}
	if !AlmostEqual(p, V(50, 0), 1e-9) {
		t.Errorf("intersection = %v, want (50,0)", p)
	}

	if _, ok := IntersectSegments(V(0, 0), V(100, 0), V(150, -10), V(150, 10)); ok {
		t.Error("non-overlapping segments reported an intersection")
	}
}

func TestClosestOnSegment(t *testing.T) {
	got := ClosestOnSegment(V(0, 0), V(10, 0), V(5, 7))
	if !AlmostEqual(got, V(5, 0), 1e-12) {
		t.Errorf("closest = %v, want (5,0)", got)
	}
	got = ClosestOnSegment(V(0, 0), V(10, 0), V(-4, 3))
	if !AlmostEqual(got, V(0, 0), 1e-12) {
		t.Errorf("closest clamps to endpoint, got %v", got)
	}
}

func TestRangeOverlap(t *testing.T) {
	a := NewRange(0, 10)
	b := NewRange(8, 20)
	if !a.Overlaps(b) {
		t.Error("overlapping ranges reported disjoint")
	}
	if got := a.Overlap(b); got != 2 {
		t.Errorf("overlap = %v, want 2", got)
	}
	c := NewRange(15, 20)
	if got := a.Overlap(c); got != -5 {
		t.Errorf("separation = %v, want -5", got)
	}
}

func TestRotationBetween(t *testing.T) {
	r, ok := RotationBetween(V(1, 0), V(0, 2))
	if !ok {
		t.Fatal("RotationBetween reported degenerate")
	}
	got := r.Apply(V(1, 0))
	if !AlmostEqual(got, V(0, 1), 1e-12) {
		t.Errorf("rotated = %v, want (0,1)", got)
	}
	if _, ok := RotationBetween(V(0, 0), V(1, 0)); ok {
		t.Error("zero vector accepted")
	}
}
