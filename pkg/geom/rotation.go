package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rotation is a 2-D rotation stored as its cosine/sine pair so repeated
// application does not accumulate trigonometric error.
type Rotation struct {
	Cos, Sin float64
}

// IdentityRotation is the zero-angle rotation.
var IdentityRotation = Rotation{Cos: 1, Sin: 0}

// RotationFromAngle builds a rotation from an angle in radians.
func RotationFromAngle(rad float64) Rotation {
	s, c := math.Sincos(rad)
	return Rotation{Cos: c, Sin: s}
}

// RotationBetween returns the rotation carrying the direction of from onto
// the direction of to. The second result is false if either vector is
// degenerate.
func RotationBetween(from, to Vec) (Rotation, bool) {
	nf := r2.Norm(from)
	nt := r2.Norm(to)
	if nf == 0 || nt == 0 {
		return IdentityRotation, false
	}
	f := r2.Scale(1/nf, from)
	t := r2.Scale(1/nt, to)
	return Rotation{
		Cos: r2.Dot(f, t),
		Sin: r2.Cross(f, t),
	}, true
}

// Angle returns the rotation angle in radians, in (-pi, pi].
func (r Rotation) Angle() float64 {
	return math.Atan2(r.Sin, r.Cos)
}

// Apply rotates v about the origin.
func (r Rotation) Apply(v Vec) Vec {
	return Vec{
		X: r.Cos*v.X - r.Sin*v.Y,
		Y: r.Sin*v.X + r.Cos*v.Y,
	}
}

// ApplyAbout rotates p about the pivot c.
func (r Rotation) ApplyAbout(p, c Vec) Vec {
	return r2.Add(c, r.Apply(r2.Sub(p, c)))
}

// Mul composes two rotations (r then s).
func (r Rotation) Mul(s Rotation) Rotation {
	return Rotation{
		Cos: r.Cos*s.Cos - r.Sin*s.Sin,
		Sin: r.Sin*s.Cos + r.Cos*s.Sin,
	}
}

// Inv returns the inverse rotation.
func (r Rotation) Inv() Rotation {
	return Rotation{Cos: r.Cos, Sin: -r.Sin}
}
