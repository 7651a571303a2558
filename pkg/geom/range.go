package geom

import "gonum.org/v1/gonum/spatial/r2"

// Range is a closed 1-D interval.
type Range struct {
	Min, Max float64
}

// NewRange builds a range from two values in either order.
func NewRange(a, b float64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Min: a, Max: b}
}

// Len returns the range length.
func (r Range) Len() float64 { return r.Max - r.Min }

// Contains reports whether x lies inside the range.
func (r Range) Contains(x float64) bool { return x >= r.Min && x <= r.Max }

// Overlaps reports whether two ranges intersect.
func (r Range) Overlaps(s Range) bool { return r.Min <= s.Max && s.Min <= r.Max }

// Overlap returns the length of the intersection, negative when the ranges
// are separated by that distance.
func (r Range) Overlap(s Range) float64 {
	lo := r.Min
	if s.Min > lo {
		lo = s.Min
	}
	hi := r.Max
	if s.Max < hi {
		hi = s.Max
	}
	return hi - lo
}

// Expand grows the range by d on both sides.
func (r Range) Expand(d float64) Range {
	return Range{Min: r.Min - d, Max: r.Max + d}
}

// Shift translates the range.
func (r Range) Shift(d float64) Range {
	return Range{Min: r.Min + d, Max: r.Max + d}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Vec
}

// R builds a rectangle from any two opposite corners.
func R(x0, y0, x1, y1 float64) Rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{Min: V(x0, y0), Max: V(x1, y1)}
}

// RectFromPoints returns the bounding rectangle of two points.
func RectFromPoints(p, q Vec) Rect {
	return R(p.X, p.Y, q.X, q.Y)
}

// Center returns the rectangle's center.
func (r Rect) Center() Vec { return Mid(r.Min, r.Max) }

// Size returns width and height as a vector.
func (r Rect) Size() Vec { return r2.Sub(r.Max, r.Min) }

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Expand grows the rectangle by d on all sides.
func (r Rect) Expand(d float64) Rect {
	return Rect{Min: r2.Sub(r.Min, V(d, d)), Max: r2.Add(r.Max, V(d, d))}
}

// Translate shifts the rectangle by d.
func (r Rect) Translate(d Vec) Rect {
	return Rect{Min: r2.Add(r.Min, d), Max: r2.Add(r.Max, d)}
}

// Union returns the smallest rectangle covering both.
func (r Rect) Union(s Rect) Rect {
	out := r
	if s.Min.X < out.Min.X {
		out.Min.X = s.Min.X
	}
	if s.Min.Y < out.Min.Y {
		out.Min.Y = s.Min.Y
	}
	if s.Max.X > out.Max.X {
		out.Max.X = s.Max.X
	}
	if s.Max.Y > out.Max.Y {
		out.Max.Y = s.Max.Y
	}
	return out
}

// Corners returns the four corners in counter-clockwise order.
func (r Rect) Corners() [4]Vec {
	return [4]Vec{
		r.Min,
		V(r.Max.X, r.Min.Y),
		r.Max,
		V(r.Min.X, r.Max.Y),
	}
}

// ProjectOnto projects the rectangle onto a unit direction, returning the
// covered 1-D range.
func (r Rect) ProjectOnto(d Vec) Range {
	c := r.Corners()
	out := Range{Min: Project(c[0], d), Max: Project(c[0], d)}
	for _, p := range c[1:] {
		t := Project(p, d)
		if t < out.Min {
			out.Min = t
		}
		if t > out.Max {
			out.Max = t
		}
	}
	return out
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(s Rect) bool {
	return r.Min.X <= s.Max.X && s.Min.X <= r.Max.X &&
		r.Min.Y <= s.Max.Y && s.Min.Y <= r.Max.Y
}
