package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Axis is a canonical unit direction: the shared identity of a line and its
// reverse. The canonical representative has its angle in [-90, 90) degrees,
// so (1,1) and (-1,-1) canonicalize to the same direction.
//
// Axes are interned by an AxisRegistry and never mutated once created; two
// segments are parallel exactly when they hold the same *Axis.
type Axis struct {
	dir Vec // unit length, canonical half-plane
}

// Dir returns the canonical unit direction.
func (a *Axis) Dir() Vec { return a.dir }

// Perp returns the unit direction orthogonal to the axis.
func (a *Axis) Perp() Vec { return Perp(a.dir) }

// Angle returns the canonical angle in radians, in [-pi/2, pi/2).
func (a *Axis) Angle() float64 { return math.Atan2(a.dir.Y, a.dir.X) }

// Horizontalness measures how close the axis is to horizontal, 1 for a
// horizontal axis and 0 for a vertical one. Used as the glyph tie-break.
func (a *Axis) Horizontalness() float64 { return math.Abs(a.dir.X) }

// CanonicalDir reduces v to the canonical half-plane unit direction. The
// second result is false when v is (numerically) zero-length.
func CanonicalDir(v Vec) (Vec, bool) {
	n := r2.Norm(v)
	if n == 0 {
		return Vec{}, false
	}
	u := r2.Scale(1/n, v)
	if u.X < 0 || (u.X == 0 && u.Y > 0) {
		u = r2.Scale(-1, u)
	}
	return u, true
}

// DefaultAxisTolerance is the angular matching tolerance (as the sine of the
// angle between two directions) below which the registry treats two
// directions as the same axis.
const DefaultAxisTolerance = 1e-5

// AxisRegistry interns axes so geometrically-equal directions share one
// *Axis. Each entry is reference-counted by the segments using it and is
// evicted when its count drops to zero.
//
// The registry is owned by a circuit; there is no package-level instance.
type AxisRegistry struct {
	tol     float64
	entries []*axisEntry
}

type axisEntry struct {
	axis *Axis
	refs int
}

// NewAxisRegistry returns an empty registry with the default tolerance.
func NewAxisRegistry() *AxisRegistry {
	return &AxisRegistry{tol: DefaultAxisTolerance}
}

// Acquire interns the direction of v, returning an existing axis when one
// matches within tolerance and creating a fresh one otherwise. The returned
// axis has its reference count incremented; it is nil when v is zero-length.
func (r *AxisRegistry) Acquire(v Vec) *Axis {
	u, ok := CanonicalDir(v)
	if !ok {
		return nil
	}
	for _, e := range r.entries {
		// Anti-parallel near the +/-90 degree seam still matches: the
		// cross product is tiny for both parallel and anti-parallel.
		if math.Abs(r2.Cross(e.axis.dir, u)) <= r.tol {
			e.refs++
			return e.axis
		}
	}
	e := &axisEntry{axis: &Axis{dir: u}, refs: 1}
	r.entries = append(r.entries, e)
	return e.axis
}

// Retain bumps the reference count of an axis already held elsewhere.
func (r *AxisRegistry) Retain(a *Axis) {
	if e := r.lookup(a); e != nil {
		e.refs++
	}
}

// Release decrements the reference count, evicting the entry at zero.
func (r *AxisRegistry) Release(a *Axis) {
	for i, e := range r.entries {
		if e.axis == a {
			e.refs--
			if e.refs <= 0 {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
			}
			return
		}
	}
}

// Refs reports the live reference count for an axis, 0 if evicted.
func (r *AxisRegistry) Refs(a *Axis) int {
	if e := r.lookup(a); e != nil {
		return e.refs
	}
	return 0
}

// Len reports the number of live axes.
func (r *AxisRegistry) Len() int { return len(r.entries) }

func (r *AxisRegistry) lookup(a *Axis) *axisEntry {
	for _, e := range r.entries {
		if e.axis == a {
			return e
		}
	}
	return nil
}
