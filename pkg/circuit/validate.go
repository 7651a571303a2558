package circuit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// Validate checks the graph invariants and returns one message per
// violation. A healthy circuit returns nil.
func (c *Circuit) Validate() []string {
	var out []string
	report := func(format string, args ...interface{}) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	for _, id := range c.SegmentIDs() {
		s := c.segments[id]
		a := c.vertices[s.Start]
		b := c.vertices[s.End]
		if a == nil || b == nil {
			report("segment #%d references missing vertex", id)
			continue
		}
		if a.Edges[id] != s.End || b.Edges[id] != s.Start {
			report("segment #%d edge relation is not symmetric", id)
		}
		if d, ok := geom.CanonicalDir(r2.Sub(b.Pos, a.Pos)); ok {
			if math.Abs(r2.Cross(d, s.Axis.Dir())) > geom.DefaultAxisTolerance {
				report("segment #%d axis does not match its geometry", id)
			}
		}
		if c.axes.Refs(s.Axis) == 0 {
			report("segment #%d holds an evicted axis", id)
		}
		for other, st := range s.Crossings {
			o := c.segments[other]
			if o == nil {
				report("segment #%d crossing style references missing segment #%d", id, other)
				continue
			}
			if mirror, ok := o.Crossings[id]; !ok || mirror != st {
				report("crossing style between #%d and #%d is not mirrored", id, other)
			}
		}
		for vid := range s.Attached {
			v := c.vertices[vid]
			if v == nil {
				report("segment #%d attachment references missing vertex #%d", id, vid)
				continue
			}
			if v.Host.Kind != HostSegment || v.Host.Segment != id {
				report("vertex #%d does not point back at its host segment #%d", vid, id)
			}
		}
	}

	for _, id := range c.VertexIDs() {
		v := c.vertices[id]
		for sid, far := range v.Edges {
			s := c.segments[sid]
			if s == nil {
				report("vertex #%d lists missing segment #%d", id, sid)
				continue
			}
			if c.vertices[far] == nil {
				report("vertex #%d edge far endpoint #%d is missing", id, far)
			}
		}
		if v.Kind == KindPort && c.symbols[v.Symbol] == nil {
			report("port #%d belongs to missing symbol #%d", id, v.Symbol)
		}
	}

	for pair := range c.marked {
		if c.segments[pair.A] == nil || c.segments[pair.B] == nil {
			report("marked crossing (%d, %d) references a missing segment", pair.A, pair.B)
		}
	}
	return out
}
