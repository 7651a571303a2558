package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Line is an infinite line through P with unit direction D.
type Line struct {
	P Vec
	D Vec
}

// LineThrough builds a line through p along the direction of d. The second
// result is false when d is zero-length.
func LineThrough(p, d Vec) (Line, bool) {
	n := r2.Norm(d)
	if n == 0 {
		return Line{}, false
	}
	return Line{P: p, D: r2.Scale(1/n, d)}, true
}

// At returns the point at parameter t.
func (l Line) At(t float64) Vec {
	return r2.Add(l.P, r2.Scale(t, l.D))
}

// Param returns the parameter of the closest point on the line to p.
func (l Line) Param(p Vec) float64 {
	return Project(r2.Sub(p, l.P), l.D)
}

// Closest returns the closest point on the line to p.
func (l Line) Closest(p Vec) Vec {
	return l.At(l.Param(p))
}

// Rejection returns the signed perpendicular distance from p to the line.
func (l Line) Rejection(p Vec) float64 {
	return Reject(r2.Sub(p, l.P), l.D)
}

// minParallelSin guards intersection against nearly-parallel lines; below
// this value the intersection point is numerically meaningless.
const minParallelSin = 1e-9

// IntersectLines returns the intersection of two lines. The second result is
// false when they are parallel (or degenerate).
func IntersectLines(a, b Line) (Vec, bool) {
	den := r2.Cross(a.D, b.D)
	if math.Abs(den) < minParallelSin {
		return Vec{}, false
	}
	t := r2.Cross(r2.Sub(b.P, a.P), b.D) / den
	return a.At(t), true
}

// SegmentParams returns the line parameters (t, u) at which the infinite
// lines through p1->p2 and q1->q2 intersect, both normalized so 0 is the
// first endpoint and 1 the second. The third result is false for parallel
// or degenerate segments.
func SegmentParams(p1, p2, q1, q2 Vec) (float64, float64, bool) {
	dp := r2.Sub(p2, p1)
	dq := r2.Sub(q2, q1)
	den := r2.Cross(dp, dq)
	if math.Abs(den) < minParallelSin*r2.Norm(dp)*r2.Norm(dq) || den == 0 {
		return 0, 0, false
	}
	w := r2.Sub(q1, p1)
	t := r2.Cross(w, dq) / den
	u := r2.Cross(w, dp) / den
	return t, u, true
}

// IntersectSegments returns the intersection point of two closed segments,
// false when they do not meet or are parallel.
func IntersectSegments(p1, p2, q1, q2 Vec) (Vec, bool) {
	t, u, ok := SegmentParams(p1, p2, q1, q2)
	if !ok || t < 0 || t > 1 || u < 0 || u > 1 {
		return Vec{}, false
	}
	return Lerp(p1, p2, t), true
}

// ClosestOnSegment returns the point on the closed segment p1-p2 nearest
// to p.
func ClosestOnSegment(p1, p2, p Vec) Vec {
	d := r2.Sub(p2, p1)
	n2 := r2.Norm2(d)
	if n2 == 0 {
		return p1
	}
	t := r2.Dot(r2.Sub(p, p1), d) / n2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r2.Add(p1, r2.Scale(t, d))
}

// DistToSegment returns the distance from p to the closed segment p1-p2.
func DistToSegment(p1, p2, p Vec) float64 {
	return Dist(p, ClosestOnSegment(p1, p2, p))
}
