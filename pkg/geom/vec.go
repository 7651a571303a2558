// Package geom provides the 2-D primitives the circuit editor is built on:
// vectors, rotations, canonical axes with an interning registry, 1-D ranges,
// rectangles, and line/ray/segment intersection routines.
//
// Vectors are gonum's r2.Vec; arithmetic not covered by the r2 package
// (perpendiculars, projections, distances) lives here.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a 2-D vector or point.
type Vec = r2.Vec

// V is a shorthand constructor.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Perp returns v rotated 90 degrees counter-clockwise.
func Perp(v Vec) Vec {
	return Vec{X: -v.Y, Y: v.X}
}

// Dist returns the distance between two points.
func Dist(p, q Vec) float64 {
	return r2.Norm(r2.Sub(p, q))
}

// Dist2 returns the squared distance between two points.
func Dist2(p, q Vec) float64 {
	return r2.Norm2(r2.Sub(p, q))
}

// Lerp interpolates between p and q; t=0 gives p, t=1 gives q.
func Lerp(p, q Vec, t float64) Vec {
	return r2.Add(p, r2.Scale(t, r2.Sub(q, p)))
}

// Mid returns the midpoint of p and q.
func Mid(p, q Vec) Vec {
	return Lerp(p, q, 0.5)
}

// Project returns the scalar projection of v onto unit direction d.
func Project(v, d Vec) float64 {
	return r2.Dot(v, d)
}

// Reject returns the signed perpendicular component of v relative to unit
// direction d (positive on the counter-clockwise side).
func Reject(v, d Vec) float64 {
	return r2.Cross(d, v)
}

// AlmostEqual reports whether two points coincide within tol.
func AlmostEqual(p, q Vec, tol float64) bool {
	return Dist2(p, q) <= tol*tol
}

// AngleOf returns the angle of v in radians, in (-pi, pi].
func AngleOf(v Vec) float64 {
	return math.Atan2(v.Y, v.X)
}
