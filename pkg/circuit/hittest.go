package circuit

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// HitTest finds the element under p: the nearest vertex within radius wins,
// then the nearest segment, then a symbol whose collision bounds contain p.
func (c *Circuit) HitTest(p geom.Vec, radius float64) (ElemRef, bool) {
	bestD := radius
	var best ElemRef
	for _, id := range c.VertexIDs() {
		v := c.vertices[id]
		if d := geom.Dist(v.Pos, p); d <= bestD {
			best, bestD = VertexRef(id), d
		}
	}
	if best.Kind != ElemNone {
		return best, true
	}

	bestD = radius
	for _, id := range c.SegmentIDs() {
		s := c.segments[id]
		a, b := c.SegmentEnds(s)
		if d := geom.DistToSegment(a, b, p); d <= bestD {
			best, bestD = SegmentRef(id), d
		}
	}
	if best.Kind != ElemNone {
		return best, true
	}

	for _, id := range c.SymbolIDs() {
		if c.symbols[id].CollisionBounds().Expand(radius).Contains(p) {
			return SymbolRef(id), true
		}
	}
	return ElemRef{}, false
}

// ElementsIn returns every element touching the rectangle, in deterministic
// order: a vertex by its position, a segment when any part of it crosses the
// rectangle, a symbol by its collision bounds.
func (c *Circuit) ElementsIn(r geom.Rect) []ElemRef {
	var out []ElemRef
	for _, id := range c.VertexIDs() {
		if r.Contains(c.vertices[id].Pos) {
			out = append(out, VertexRef(id))
		}
	}
	for _, id := range c.SegmentIDs() {
		a, b := c.SegmentEnds(c.segments[id])
		if segmentTouchesRect(a, b, r) {
			out = append(out, SegmentRef(id))
		}
	}
	for _, id := range c.SymbolIDs() {
		if r.Intersects(c.symbols[id].CollisionBounds()) {
			out = append(out, SymbolRef(id))
		}
	}
	return out
}

func segmentTouchesRect(a, b geom.Vec, r geom.Rect) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	corners := r.Corners()
	for i := range corners {
		if _, ok := geom.IntersectSegments(a, b, corners[i], corners[(i+1)%len(corners)]); ok {
			return true
		}
	}
	return false
}

// Describe renders a short human-readable description of an element, used
// by the query tool and the CLI.
func (c *Circuit) Describe(ref ElemRef) string {
	switch ref.Kind {
	case ElemVertex:
		v := c.vertices[ref.Vertex]
		if v == nil {
			return fmt.Sprintf("vertex #%d (deleted)", ref.Vertex)
		}
		if v.Kind == KindPort {
			return fmt.Sprintf("port %q of symbol #%d at (%.1f, %.1f)", v.Port, v.Symbol, v.Pos.X, v.Pos.Y)
		}
		return fmt.Sprintf("junction #%d at (%.1f, %.1f), %d edges", v.ID, v.Pos.X, v.Pos.Y, len(v.Edges))
	case ElemSegment:
		s := c.segments[ref.Segment]
		if s == nil {
			return fmt.Sprintf("segment #%d (deleted)", ref.Segment)
		}
		frozen := ""
		if s.Frozen {
			frozen = ", frozen"
		}
		return fmt.Sprintf("segment #%d (%s), length %.1f%s", s.ID, s.Type, c.SegmentLen(s), frozen)
	case ElemSymbol:
		sym := c.symbols[ref.Symbol]
		if sym == nil {
			return fmt.Sprintf("symbol #%d (deleted)", ref.Symbol)
		}
		return fmt.Sprintf("symbol #%d (%s) at (%.1f, %.1f)", sym.ID, sym.Kind.Name, sym.Pos.X, sym.Pos.Y)
	}
	return "nothing"
}
