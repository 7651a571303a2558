package circuit

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// spliceHalfWidth is half the length of segment that a crossing glyph
// replaces on the segment it is spliced into.
const spliceHalfWidth = 5.0

// Section is one drawn piece of a segment between glyph splices.
type Section struct {
	From, To geom.Vec
}

// SegmentView is a segment as the renderer should draw it.
type SegmentView struct {
	ID       SegmentID
	Type     string
	Sections []Section
}

// GlyphPlacement positions one resolved glyph. Dir is the facing of the
// owning segment's axis; Flip selects the left/right variant.
type GlyphPlacement struct {
	Name string
	At   geom.Vec
	Dir  geom.Vec
	Flip bool
}

// Scene is the per-frame derived view handed to the renderer. It is
// recomputed from scratch; building it twice without mutation yields
// identical output.
type Scene struct {
	Segments []SegmentView
	Glyphs   []GlyphPlacement
}

// BuildScene derives the renderer view: segments sliced into drawn sections
// at crossing splices, plus glyph placements for crossings and vertices.
func BuildScene(c *Circuit) *Scene {
	scene := &Scene{}
	cuts := map[SegmentID][]geom.Range{} // splice intervals in segment params

	for _, x := range c.Crossings() {
		name, owner, flip, ok := c.resolveCrossingGlyph(x.Pair)
		if !ok {
			continue
		}
		ownerSeg := c.segments[owner]
		scene.Glyphs = append(scene.Glyphs, GlyphPlacement{
			Name: name,
			At:   x.At,
			Dir:  ownerSeg.Axis.Dir(),
			Flip: flip,
		})
		// The glyph splices into the owning segment's run.
		p, q := c.SegmentEnds(ownerSeg)
		length := geom.Dist(p, q)
		if length == 0 {
			continue
		}
		line, _ := geom.LineThrough(p, geom.V(q.X-p.X, q.Y-p.Y))
		t := line.Param(x.At) / length
		w := spliceHalfWidth / length
		cuts[owner] = append(cuts[owner], geom.Range{Min: t - w, Max: t + w})
	}

	for _, id := range c.SegmentIDs() {
		s := c.segments[id]
		p, q := c.SegmentEnds(s)
		view := SegmentView{ID: id, Type: s.Type}
		for _, r := range sectionsAfterCuts(cuts[id]) {
			view.Sections = append(view.Sections, Section{
				From: geom.Lerp(p, q, r.Min),
				To:   geom.Lerp(p, q, r.Max),
			})
		}
		scene.Segments = append(scene.Segments, view)
	}

	for _, id := range c.VertexIDs() {
		if g, ok := c.resolveVertexGlyph(c.vertices[id]); ok {
			scene.Glyphs = append(scene.Glyphs, g)
		}
	}
	return scene
}

// sectionsAfterCuts subtracts the cut intervals from [0,1].
func sectionsAfterCuts(cuts []geom.Range) []geom.Range {
	if len(cuts) == 0 {
		return []geom.Range{{Min: 0, Max: 1}}
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].Min < cuts[j].Min })
	var out []geom.Range
	at := 0.0
	for _, cut := range cuts {
		if cut.Min > at {
			out = append(out, geom.Range{Min: at, Max: cut.Min})
		}
		if cut.Max > at {
			at = cut.Max
		}
	}
	if at < 1 {
		out = append(out, geom.Range{Min: at, Max: 1})
	}
	return out
}

// resolveCrossingGlyph decides the glyph for a segment pair and which
// segment owns it. A manual style wins; otherwise both line types' meeting
// tables are consulted: one side's request is used directly, equal requests
// agree, and conflicting requests draw nothing.
func (c *Circuit) resolveCrossingGlyph(pair SegPair) (name string, owner SegmentID, flip bool, ok bool) {
	sa := c.segments[pair.A]
	sb := c.segments[pair.B]
	if sa == nil || sb == nil {
		return "", 0, false, false
	}
	owner = c.moreHorizontal(sa, sb)

	if st, found := sa.Crossings[pair.B]; found && st.Manual {
		if st.Glyph == "" {
			return "", 0, false, false // explicitly suppressed
		}
		return st.Glyph, owner, st.Flip, true
	}

	name, ok = resolveTwoSided(c.meetingGlyph(sa.Type, sb.Type, meetCrossing),
		c.meetingGlyph(sb.Type, sa.Type, meetCrossing))
	if !ok || name == "" {
		return "", 0, false, false
	}
	return name, owner, false, true
}

// moreHorizontal picks the glyph-owning segment: the one with the smaller
// angular deviation from horizontal, ties broken by segment ID for a
// consistent ordering.
func (c *Circuit) moreHorizontal(a, b *Segment) SegmentID {
	ha := a.Axis.Horizontalness()
	hb := b.Axis.Horizontalness()
	if ha > hb {
		return a.ID
	}
	if hb > ha {
		return b.ID
	}
	if a.ID < b.ID {
		return a.ID
	}
	return b.ID
}

type meetingKind int

const (
	meetCrossing meetingKind = iota
	meetL
	meetT
	meetX
)

func (c *Circuit) meetingGlyph(typ, other string, kind meetingKind) string {
	lt := c.LineType(typ)
	if lt == nil {
		return ""
	}
	m, ok := lt.Meeting[other]
	if !ok {
		return ""
	}
	switch kind {
	case meetCrossing:
		return m.Crossing
	case meetL:
		return m.L
	case meetT:
		return m.T
	case meetX:
		return m.X
	}
	return ""
}

// resolveTwoSided merges the glyphs requested by the two sides of a
// meeting: an empty side defers, equal requests agree, different non-empty
// requests conflict and draw nothing.
func resolveTwoSided(a, b string) (string, bool) {
	switch {
	case a == "":
		return b, b != ""
	case b == "":
		return a, true
	case a == b:
		return a, true
	}
	return "", false
}

// resolveVertexGlyph decides the glyph at a junction or port: the override
// wins, otherwise the meeting kind (L, T, X) is resolved from the incident
// line types. Junctions whose types disagree pairwise draw nothing; no rule
// is defined past four incident edges.
func (c *Circuit) resolveVertexGlyph(v *Vertex) (GlyphPlacement, bool) {
	if v.Glyph != "" {
		return GlyphPlacement{Name: v.Glyph, At: v.Pos, Dir: geom.V(1, 0)}, true
	}

	segs := make([]*Segment, 0, len(v.Edges))
	for _, id := range c.EdgeList(v) {
		segs = append(segs, c.segments[id])
	}
	// An attached host counts as a pass-through pair of edges.
	if v.Host.Kind == HostSegment {
		if host := c.segments[v.Host.Segment]; host != nil {
			segs = append(segs, host, host)
		}
	}

	var kind meetingKind
	switch len(segs) {
	case 2:
		if segs[0].Axis == segs[1].Axis {
			return GlyphPlacement{}, false // straight pass-through
		}
		kind = meetL
	case 3:
		kind = meetT
	case 4:
		kind = meetX
	default:
		return GlyphPlacement{}, false
	}

	types := []string{}
	for _, s := range segs {
		dup := false
		for _, t := range types {
			if t == s.Type {
				dup = true
				break
			}
		}
		if !dup {
			types = append(types, s.Type)
		}
	}

	var name string
	var ok bool
	switch len(types) {
	case 1:
		name = c.meetingGlyph(types[0], types[0], kind)
		ok = name != ""
	case 2:
		name, ok = resolveTwoSided(c.meetingGlyph(types[0], types[1], kind),
			c.meetingGlyph(types[1], types[0], kind))
	default:
		return GlyphPlacement{}, false
	}
	if !ok || name == "" {
		return GlyphPlacement{}, false
	}

	// Face the glyph along the most horizontal incident segment.
	best := segs[0]
	for _, s := range segs[1:] {
		if s.Axis.Horizontalness() > best.Axis.Horizontalness() {
			best = s
		}
	}
	return GlyphPlacement{Name: name, At: v.Pos, Dir: best.Axis.Dir()}, true
}
