package snap

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// NearestVertex returns the closest vertex to p within radius. Vertices for
// which reject returns true are skipped; a nil reject accepts everything.
func NearestVertex(c *circuit.Circuit, p geom.Vec, radius float64, reject func(*circuit.Vertex) bool) (*circuit.Vertex, bool) {
	best := radius * radius
	var found *circuit.Vertex
	for _, id := range c.VertexIDs() {
		v := c.Vertex(id)
		if reject != nil && reject(v) {
			continue
		}
		if d2 := geom.Dist2(p, v.Pos); d2 <= best {
			best = d2
			found = v
		}
	}
	return found, found != nil
}

// ToPoint pulls p toward target along the ease curve. The second result is
// false when the target is out of range and p is unchanged.
func (cfg Config) ToPoint(p, target geom.Vec) (geom.Vec, bool) {
	d := geom.Dist(p, target)
	if d == 0 {
		return target, true
	}
	adj := cfg.Ease(d)
	if adj == 0 {
		return p, false
	}
	if adj >= d {
		return target, true
	}
	return r2.Add(p, r2.Scale(adj/d, r2.Sub(target, p))), true
}

// ToLine pulls p perpendicularly toward the line along the ease curve.
func (cfg Config) ToLine(p geom.Vec, ln geom.Line) (geom.Vec, bool) {
	rej := ln.Rejection(p)
	d := math.Abs(rej)
	adj := cfg.Ease(d)
	if adj == 0 && d != 0 {
		return p, false
	}
	if adj > d {
		adj = d
	}
	if rej > 0 {
		adj = -adj
	}
	return r2.Add(p, r2.Scale(adj, geom.Perp(ln.D))), true
}

// AxisChoices collects the candidate draw directions at a vertex: the two
// primary axes, optionally the two diagonals, and the axis of every segment
// already incident to the vertex. Near-duplicates are collapsed.
func AxisChoices(c *circuit.Circuit, at *circuit.Vertex, diagonals bool) []geom.Vec {
	dirs := []geom.Vec{geom.V(1, 0), geom.V(0, 1)}
	if diagonals {
		h := math.Sqrt2 / 2
		dirs = append(dirs, geom.V(h, h), geom.V(h, -h))
	}
	if at != nil {
		for sid := range at.Edges {
			s := c.Segment(sid)
			if s == nil || s.Axis == nil {
				continue
			}
			d := s.Axis.Dir()
			dup := false
			for _, have := range dirs {
				if math.Abs(r2.Cross(have, d)) <= geom.DefaultAxisTolerance {
					dup = true
					break
				}
			}
			if !dup {
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

// NearestDir picks the candidate direction closest in angle to drag,
// oriented to face the drag. The second result is false when drag is zero or
// there are no candidates.
func NearestDir(drag geom.Vec, candidates []geom.Vec) (geom.Vec, bool) {
	n := r2.Norm(drag)
	if n == 0 || len(candidates) == 0 {
		return geom.Vec{}, false
	}
	u := r2.Scale(1/n, drag)
	best := -1.0
	var dir geom.Vec
	for _, cand := range candidates {
		dot := r2.Dot(u, cand)
		if a := math.Abs(dot); a > best {
			best = a
			if dot < 0 {
				cand = r2.Scale(-1, cand)
			}
			dir = cand
		}
	}
	return dir, true
}

// ToSegmentsAlong slides p, assumed to lie on ray, toward the nearest point
// where the ray crosses an existing segment. Crossings within EndpointBuffer
// of the target segment's own endpoints are ignored (vertex snapping owns
// those), as are segments in skip and crossings behind the ray origin.
func (cfg Config) ToSegmentsAlong(c *circuit.Circuit, ray geom.Line, p geom.Vec, skip map[circuit.SegmentID]bool) (geom.Vec, bool) {
	along := ray.Param(p)
	best := cfg.EaseRadius
	target := 0.0
	found := false
	far := ray.At(1)
	for _, id := range c.SegmentIDs() {
		if skip[id] {
			continue
		}
		q1, q2 := c.SegmentEnds(c.Segment(id))
		t, u, ok := geom.SegmentParams(ray.P, far, q1, q2)
		if !ok || u < 0 || u > 1 || t <= 0 {
			continue
		}
		x := ray.At(t)
		if geom.Dist(x, q1) <= cfg.EndpointBuffer || geom.Dist(x, q2) <= cfg.EndpointBuffer {
			continue
		}
		if d := math.Abs(t - along); d < best {
			best = d
			target = t
			found = true
		}
	}
	if !found {
		return p, false
	}
	adj := cfg.Ease(best)
	if adj == 0 {
		return p, false
	}
	if adj > best {
		adj = best
	}
	if target < along {
		adj = -adj
	}
	return ray.At(along + adj), true
}

// ToGap eases p toward the standard-gap clearance from the nearest element
// whose orthogonal projection overlaps p's. Only approaches from outside an
// element count; p already inside an element's span is left alone for that
// element. skip filters elements out (nil skips nothing).
func (cfg Config) ToGap(c *circuit.Circuit, dir, p geom.Vec, skip func(circuit.ElemRef) bool) (geom.Vec, bool) {
	along := geom.Project(p, dir)
	ortho := geom.Project(p, geom.Perp(dir))
	best := cfg.EaseRadius
	target := 0.0
	found := false
	for _, sp := range c.ProjectAll(dir) {
		if skip != nil && skip(sp.Ref) {
			continue
		}
		if !sp.Ortho.Contains(ortho) {
			continue
		}
		var g float64
		switch {
		case along <= sp.Along.Min:
			g = sp.Along.Min - cfg.Gap
		case along >= sp.Along.Max:
			g = sp.Along.Max + cfg.Gap
		default:
			continue
		}
		if d := math.Abs(g - along); d < best {
			best = d
			target = g
			found = true
		}
	}
	if !found {
		return p, false
	}
	adj := cfg.Ease(best)
	if adj == 0 {
		return p, false
	}
	if adj > best {
		adj = best
	}
	if target < along {
		adj = -adj
	}
	return r2.Add(p, r2.Scale(adj, dir)), true
}
