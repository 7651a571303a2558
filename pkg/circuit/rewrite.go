package circuit

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// segMeta captures everything ReplaceSegment and mergePair must carry over
// to replacement segments.
type segMeta struct {
	typ      string
	frozen   bool
	start    geom.Vec
	end      geom.Vec
	dir      geom.Vec
	styles   map[SegmentID]CrossingStyle
	attached []VertexID
	partners []SegmentID // marked-pair partners
	selected bool
}

func (c *Circuit) captureMeta(s *Segment) segMeta {
	p, q := c.SegmentEnds(s)
	dir, ok := c.SegmentDir(s)
	if !ok {
		dir = s.Axis.Dir()
	}
	m := segMeta{
		typ:      s.Type,
		frozen:   s.Frozen,
		start:    p,
		end:      q,
		dir:      dir,
		styles:   map[SegmentID]CrossingStyle{},
		selected: c.Amassed.Has(SegmentRef(s.ID)),
	}
	for other, st := range s.Crossings {
		m.styles[other] = st
	}
	for vid := range s.Attached {
		m.attached = append(m.attached, vid)
	}
	for pair := range c.marked {
		if pair.A == s.ID || pair.B == s.ID {
			m.partners = append(m.partners, pair.Other(s.ID))
		}
	}
	return m
}

// unlink removes a segment from the graph without reaping its endpoints and
// without touching migrated metadata, leaving the caller to rebuild.
func (c *Circuit) unlink(s *Segment) {
	delete(c.segments, s.ID)
	c.axes.Release(s.Axis)
	if v := c.vertices[s.Start]; v != nil {
		delete(v.Edges, s.ID)
	}
	if v := c.vertices[s.End]; v != nil {
		delete(v.Edges, s.ID)
	}
	for other := range s.Crossings {
		if o := c.segments[other]; o != nil {
			delete(o.Crossings, s.ID)
		}
	}
	for pair := range c.marked {
		if pair.A == s.ID || pair.B == s.ID {
			delete(c.marked, pair)
		}
	}
	c.Amassed.RemoveSegment(s.ID)
	for vid := range s.Attached {
		if v := c.vertices[vid]; v != nil && v.Host.Kind == HostSegment && v.Host.Segment == s.ID {
			v.Host = HostRef{}
		}
	}
}

// migrateMeta re-homes one captured source segment's metadata onto a set of
// replacement parts that jointly cover the source's geometry.
func (c *Circuit) migrateMeta(m segMeta, parts []*Segment) {
	if len(parts) == 0 {
		return
	}
	// Attachments move to the part they lie on.
	for _, vid := range m.attached {
		v := c.vertices[vid]
		if v == nil {
			continue
		}
		part := c.nearestPart(parts, v.Pos)
		part.Attached[vid] = struct{}{}
		v.Host = HostRef{Kind: HostSegment, Segment: part.ID}
	}
	// Crossing styles move to the part containing the meeting point; the
	// flip facing is re-oriented when the part runs opposite the source.
	for otherID, st := range m.styles {
		other := c.segments[otherID]
		if other == nil {
			continue
		}
		o1, o2 := c.SegmentEnds(other)
		at, ok := geom.IntersectSegments(m.start, m.end, o1, o2)
		if !ok {
			at = geom.ClosestOnSegment(m.start, m.end, geom.Mid(o1, o2))
		}
		part := c.nearestPart(parts, at)
		if c.partReversed(part, m.dir) {
			st.Flip = !st.Flip
		}
		part.Crossings[otherID] = st
		other.Crossings[part.ID] = st
	}
	// Marked pairs follow the part nearest the partner.
	for _, partnerID := range m.partners {
		partner := c.segments[partnerID]
		if partner == nil {
			continue
		}
		p1, p2 := c.SegmentEnds(partner)
		at, ok := geom.IntersectSegments(m.start, m.end, p1, p2)
		if !ok {
			at = geom.ClosestOnSegment(m.start, m.end, geom.Mid(p1, p2))
		}
		part := c.nearestPart(parts, at)
		c.marked[MakeSegPair(part.ID, partnerID)] = struct{}{}
	}
	if m.selected {
		for _, part := range parts {
			c.Amassed.Add(SegmentRef(part.ID))
		}
	}
}

func (c *Circuit) nearestPart(parts []*Segment, p geom.Vec) *Segment {
	best := parts[0]
	bestD := c.distToSegment(best, p)
	for _, part := range parts[1:] {
		if d := c.distToSegment(part, p); d < bestD {
			best, bestD = part, d
		}
	}
	return best
}

func (c *Circuit) distToSegment(s *Segment, p geom.Vec) float64 {
	a, b := c.SegmentEnds(s)
	return geom.DistToSegment(a, b, p)
}

func (c *Circuit) partReversed(part *Segment, srcDir geom.Vec) bool {
	d, ok := c.SegmentDir(part)
	if !ok {
		return false
	}
	return r2.Dot(d, srcDir) < 0
}

// ReplaceSegment replaces one segment with the given endpoint chains,
// migrating crossing styles, attachments, marked pairs, frozen state, and
// selection membership onto the replacements. It returns the created parts,
// nil when the segment does not exist or every part is degenerate.
//
// This is one of the two structural-rewrite primitives all topology changes
// funnel through; the other is the merge inside ConvertToCrossing.
func (c *Circuit) ReplaceSegment(oldID SegmentID, ends ...[2]VertexID) []*Segment {
	old := c.segments[oldID]
	if old == nil || len(ends) == 0 {
		return nil
	}
	m := c.captureMeta(old)
	startV, endV := old.Start, old.End
	c.unlink(old)

	var parts []*Segment
	for _, e := range ends {
		s := c.NewSegmentBetween(e[0], e[1], m.typ)
		if s == nil {
			continue
		}
		s.Frozen = m.frozen
		parts = append(parts, s)
	}
	c.migrateMeta(m, parts)

	if v := c.vertices[startV]; v != nil {
		c.reapJunction(v)
	}
	if v := c.vertices[endV]; v != nil {
		c.reapJunction(v)
	}
	return parts
}

// splitEndTol is the distance below which a requested split point collapses
// onto an existing endpoint instead of cutting.
const splitEndTol = 1e-6

// SplitSegment cuts a segment at the given interior point, creating a
// junction there and two replacement parts. A point at (or beyond) an
// endpoint returns that endpoint's vertex without splitting.
func (c *Circuit) SplitSegment(id SegmentID, at geom.Vec) *Vertex {
	s := c.segments[id]
	if s == nil {
		return nil
	}
	p, q := c.SegmentEnds(s)
	at = geom.ClosestOnSegment(p, q, at)
	if geom.Dist(at, p) <= splitEndTol {
		return c.vertices[s.Start]
	}
	if geom.Dist(at, q) <= splitEndTol {
		return c.vertices[s.End]
	}
	j := c.NewJunction(at)
	c.ReplaceSegment(id, [2]VertexID{s.Start, j.ID}, [2]VertexID{j.ID, s.End})
	return j
}

// collinearPair groups two incident segments that continue through a
// junction: same interned axis, same line type, far endpoints on opposite
// sides.
type collinearPair struct {
	a, b *Segment
}

// pairEdges partitions a junction's incident segments into collinear
// same-type pairs covering every edge, nil when no such partition exists.
func (c *Circuit) pairEdges(v *Vertex) []collinearPair {
	ids := c.EdgeList(v)
	segs := make([]*Segment, len(ids))
	for i, id := range ids {
		segs[i] = c.segments[id]
	}
	used := make([]bool, len(segs))
	var pairs []collinearPair
	for i, a := range segs {
		if used[i] {
			continue
		}
		found := false
		for j := i + 1; j < len(segs); j++ {
			b := segs[j]
			if used[j] || a.Axis != b.Axis || a.Type != b.Type {
				continue
			}
			if !c.oppositeSides(v, a, b) {
				continue
			}
			used[i], used[j] = true, true
			pairs = append(pairs, collinearPair{a: a, b: b})
			found = true
			break
		}
		if !found {
			return nil
		}
	}
	return pairs
}

// oppositeSides reports whether the far endpoints of two segments incident
// to v lie on opposite sides of v, so merging them yields one straight run.
func (c *Circuit) oppositeSides(v *Vertex, a, b *Segment) bool {
	farA := c.vertices[a.Start]
	if a.Start == v.ID {
		farA = c.vertices[a.End]
	}
	farB := c.vertices[b.Start]
	if b.Start == v.ID {
		farB = c.vertices[b.End]
	}
	da := r2.Sub(farA.Pos, v.Pos)
	db := r2.Sub(farB.Pos, v.Pos)
	return r2.Dot(da, db) < 0
}

func (c *Circuit) farVertex(v *Vertex, s *Segment) VertexID {
	if s.Start == v.ID {
		return s.End
	}
	return s.Start
}

// ConvertToCrossing dissolves a junction whose edges form exactly one or two
// collinear same-type pairs, merging each pair into one segment. With two
// pairs the result is a crossing, which is pinned in the marked set; the
// junction's glyph override carries over as a manual crossing style.
//
// Rigidity merges as the AND of the pair; attachments re-home onto the
// merged segment; crossing styles are re-oriented when a merge reverses a
// segment's facing. Any precondition failure is a silent no-op, reported by
// the false return.
func (c *Circuit) ConvertToCrossing(id VertexID) bool {
	v := c.vertices[id]
	if v == nil || v.Kind != KindJunction {
		return false
	}
	n := len(v.Edges)
	if n != 2 && n != 4 {
		return false
	}
	pairs := c.pairEdges(v)
	if pairs == nil || len(pairs) != n/2 {
		return false
	}
	// Every merge must be constructible before anything mutates.
	for _, p := range pairs {
		farA := c.farVertex(v, p.a)
		farB := c.farVertex(v, p.b)
		if farA == farB {
			return false
		}
		if c.segmentIDBetween(c.vertices[farA], c.vertices[farB]) >= 0 {
			return false
		}
	}

	glyph := v.Glyph
	var merged []*Segment
	for _, p := range pairs {
		merged = append(merged, c.mergePair(v, p.a, p.b))
	}
	if len(merged) == 2 && merged[0] != nil && merged[1] != nil {
		c.marked[MakeSegPair(merged[0].ID, merged[1].ID)] = struct{}{}
		if glyph != "" {
			c.SetCrossingStyle(merged[0].ID, merged[1].ID, CrossingStyle{Glyph: glyph, Manual: true})
		}
	}
	c.Detach(id)
	if still := c.vertices[id]; still != nil {
		c.reapJunction(still)
	}
	return true
}

// mergePair replaces two segments meeting at v with one segment spanning
// their far endpoints, carrying both sources' metadata.
func (c *Circuit) mergePair(v *Vertex, a, b *Segment) *Segment {
	farA := c.farVertex(v, a)
	farB := c.farVertex(v, b)
	ma := c.captureMeta(a)
	mb := c.captureMeta(b)
	c.unlink(a)
	c.unlink(b)

	merged := c.NewSegmentBetween(farA, farB, ma.typ)
	if merged == nil {
		return nil
	}
	merged.Frozen = ma.frozen && mb.frozen
	// Styles between the two merged halves are meaningless now.
	delete(ma.styles, b.ID)
	delete(mb.styles, a.ID)
	c.migrateMeta(ma, []*Segment{merged})
	c.migrateMeta(mb, []*Segment{merged})
	if ma.selected || mb.selected {
		c.Amassed.Add(SegmentRef(merged.ID))
	}
	return merged
}

// ConvertToJunction materializes the crossing of two segments as a real
// junction, splitting both segments there. It is the inverse of
// ConvertToCrossing up to metadata-preserving equivalence: a manual crossing
// glyph becomes the junction's glyph override, the marked pair is released,
// and each half keeps its source's type, rigidity, attachments, and
// remaining crossing styles. Returns nil when the segments do not cross.
func (c *Circuit) ConvertToJunction(aID, bID SegmentID) *Vertex {
	sa := c.segments[aID]
	sb := c.segments[bID]
	if sa == nil || sb == nil || aID == bID || c.adjacent(sa, sb) {
		return nil
	}
	at, ok := c.crossingPoint(sa, sb)
	if !ok {
		return nil
	}

	glyph := ""
	if st, ok := sa.Crossings[bID]; ok && st.Manual {
		glyph = st.Glyph
	}
	c.ClearCrossingStyle(aID, bID)
	c.UnmarkCrossing(aID, bID)

	j := c.NewJunction(at)
	j.Glyph = glyph
	c.ReplaceSegment(aID, [2]VertexID{sa.Start, j.ID}, [2]VertexID{j.ID, sa.End})
	c.ReplaceSegment(bID, [2]VertexID{sb.Start, j.ID}, [2]VertexID{j.ID, sb.End})
	return j
}
