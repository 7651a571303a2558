package circuit

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// ElemSpan is one element's projection onto a working frame: the 1-D range
// it covers along the frame direction and along its orthogonal.
type ElemSpan struct {
	Ref   ElemRef
	Along geom.Range
	Ortho geom.Range
}

// ProjectAll projects every pushable element onto the unit direction dir and
// its orthogonal: free junctions as points, segments as their endpoint
// spans, symbols as their collision bounds. Ports are covered by their
// symbol and skipped. Order is deterministic (vertices, segments, symbols,
// each ascending by ID).
func (c *Circuit) ProjectAll(dir geom.Vec) []ElemSpan {
	perp := geom.Perp(dir)
	var out []ElemSpan

	for _, id := range c.VertexIDs() {
		v := c.vertices[id]
		if v.Kind != KindJunction {
			continue
		}
		t := geom.Project(v.Pos, dir)
		o := geom.Project(v.Pos, perp)
		out = append(out, ElemSpan{
			Ref:   VertexRef(id),
			Along: geom.Range{Min: t, Max: t},
			Ortho: geom.Range{Min: o, Max: o},
		})
	}
	for _, id := range c.SegmentIDs() {
		s := c.segments[id]
		p, q := c.SegmentEnds(s)
		out = append(out, ElemSpan{
			Ref:   SegmentRef(id),
			Along: geom.NewRange(geom.Project(p, dir), geom.Project(q, dir)),
			Ortho: geom.NewRange(geom.Project(p, perp), geom.Project(q, perp)),
		})
	}
	for _, id := range c.SymbolIDs() {
		sym := c.symbols[id]
		b := sym.CollisionBounds()
		out = append(out, ElemSpan{
			Ref:   SymbolRef(id),
			Along: b.ProjectOnto(dir),
			Ortho: b.ProjectOnto(perp),
		})
	}
	return out
}
