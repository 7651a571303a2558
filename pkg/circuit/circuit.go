package circuit

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// Circuit is the mutable schematic graph. All entities are addressed by
// stable integer IDs; adjacency and attachment relations are ID sets, so
// deletion never leaves dangling references.
//
// The circuit owns its axis registry; axes of two circuits are never
// comparable.
type Circuit struct {
	lib  *Library
	axes *geom.AxisRegistry

	nextID   int
	vertices map[VertexID]*Vertex
	segments map[SegmentID]*Segment
	symbols  map[SymbolID]*SymbolInstance

	// marked holds crossings the user has pinned by segment-pair identity;
	// everything else about crossings is recomputed per frame.
	marked map[SegPair]struct{}

	// Amassed is the persisted selection set.
	Amassed Selection
}

// New returns an empty circuit using the given resource library.
func New(lib *Library) *Circuit {
	if lib == nil {
		lib = &Library{
			LineTypes: map[string]*LineType{},
			Symbols:   map[string]*SymbolKind{},
		}
	}
	return &Circuit{
		lib:      lib,
		axes:     geom.NewAxisRegistry(),
		nextID:   1,
		vertices: map[VertexID]*Vertex{},
		segments: map[SegmentID]*Segment{},
		symbols:  map[SymbolID]*SymbolInstance{},
		marked:   map[SegPair]struct{}{},
		Amassed:  NewSelection(),
	}
}

// Library returns the resource lookup tables.
func (c *Circuit) Library() *Library { return c.lib }

// Axes returns the circuit's axis registry.
func (c *Circuit) Axes() *geom.AxisRegistry { return c.axes }

// LineType resolves a line-type name, nil when unknown.
func (c *Circuit) LineType(name string) *LineType { return c.lib.LineTypes[name] }

func (c *Circuit) allocID() int {
	id := c.nextID
	c.nextID++
	return id
}

// reserveID bumps the allocator past an externally assigned ID (snapshot
// loading keeps the creation-order IDs from the file).
func (c *Circuit) reserveID(id int) {
	if id >= c.nextID {
		c.nextID = id + 1
	}
}

// Vertex returns the vertex with the given ID, nil when it does not exist.
func (c *Circuit) Vertex(id VertexID) *Vertex { return c.vertices[id] }

// Segment returns the segment with the given ID, nil when it does not exist.
func (c *Circuit) Segment(id SegmentID) *Segment { return c.segments[id] }

// Symbol returns the symbol with the given ID, nil when it does not exist.
func (c *Circuit) Symbol(id SymbolID) *SymbolInstance { return c.symbols[id] }

// VertexIDs returns all vertex IDs in ascending order.
func (c *Circuit) VertexIDs() []VertexID {
	out := make([]VertexID, 0, len(c.vertices))
	for id := range c.vertices {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SegmentIDs returns all segment IDs in ascending order.
func (c *Circuit) SegmentIDs() []SegmentID {
	out := make([]SegmentID, 0, len(c.segments))
	for id := range c.segments {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SymbolIDs returns all symbol IDs in ascending order.
func (c *Circuit) SymbolIDs() []SymbolID {
	out := make([]SymbolID, 0, len(c.symbols))
	for id := range c.symbols {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EdgeList returns the incident segments of a vertex in ascending segment
// order, for deterministic traversal.
func (c *Circuit) EdgeList(v *Vertex) []SegmentID {
	out := make([]SegmentID, 0, len(v.Edges))
	for id := range v.Edges {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewJunction creates a free junction at pos.
func (c *Circuit) NewJunction(pos geom.Vec) *Vertex {
	v := &Vertex{
		ID:    VertexID(c.allocID()),
		Kind:  KindJunction,
		Pos:   pos,
		Edges: map[SegmentID]VertexID{},
	}
	c.vertices[v.ID] = v
	return v
}

// NewSegmentBetween creates a segment of the given line type between two
// existing vertices. It returns nil when either vertex is missing, the
// vertices coincide, or the two are already directly connected.
func (c *Circuit) NewSegmentBetween(start, end VertexID, lineType string) *Segment {
	a := c.vertices[start]
	b := c.vertices[end]
	if a == nil || b == nil || start == end {
		return nil
	}
	if c.segmentIDBetween(a, b) >= 0 {
		return nil
	}
	axis := c.axes.Acquire(r2.Sub(b.Pos, a.Pos))
	if axis == nil {
		return nil
	}
	s := &Segment{
		ID:        SegmentID(c.allocID()),
		Start:     start,
		End:       end,
		Axis:      axis,
		Type:      lineType,
		Attached:  map[VertexID]struct{}{},
		Crossings: map[SegmentID]CrossingStyle{},
	}
	c.segments[s.ID] = s
	a.Edges[s.ID] = end
	b.Edges[s.ID] = start
	return s
}

func (c *Circuit) segmentIDBetween(a, b *Vertex) SegmentID {
	for id, far := range a.Edges {
		if far == b.ID {
			return id
		}
	}
	return -1
}

// DeleteSegment removes a segment, releasing its axis, dropping mirrored
// crossing styles, clearing attachment hosts, and removing endpoints that
// end up as edgeless junctions.
func (c *Circuit) DeleteSegment(id SegmentID) {
	s := c.segments[id]
	if s == nil {
		return
	}
	delete(c.segments, id)
	c.axes.Release(s.Axis)

	for other := range s.Crossings {
		if o := c.segments[other]; o != nil {
			delete(o.Crossings, id)
		}
	}
	for pair := range c.marked {
		if pair.A == id || pair.B == id {
			delete(c.marked, pair)
		}
	}
	for vid := range s.Attached {
		if v := c.vertices[vid]; v != nil && v.Host.Kind == HostSegment && v.Host.Segment == id {
			v.Host = HostRef{}
			c.reapJunction(v)
		}
	}
	c.Amassed.RemoveSegment(id)

	c.dropEdge(s.Start, id)
	c.dropEdge(s.End, id)
}

func (c *Circuit) dropEdge(vid VertexID, sid SegmentID) {
	v := c.vertices[vid]
	if v == nil {
		return
	}
	delete(v.Edges, sid)
	c.reapJunction(v)
}

// reapJunction deletes a junction that has no edges and no host; ports and
// hosted junctions survive.
func (c *Circuit) reapJunction(v *Vertex) {
	if v.Kind != KindJunction || len(v.Edges) > 0 || v.Host.Kind != HostNone {
		return
	}
	c.deleteVertex(v.ID)
}

func (c *Circuit) deleteVertex(id VertexID) {
	v := c.vertices[id]
	if v == nil {
		return
	}
	delete(c.vertices, id)
	c.Amassed.RemoveVertex(id)
	c.unhost(v)
}

// EraseVertex deletes a junction along with its incident segments. Ports
// are not independently deletable; erasing a port is a no-op.
func (c *Circuit) EraseVertex(id VertexID) {
	v := c.vertices[id]
	if v == nil || v.Kind != KindJunction {
		return
	}
	for _, sid := range c.EdgeList(v) {
		c.DeleteSegment(sid)
	}
	if still := c.vertices[id]; still != nil {
		still.Host = HostRef{}
		c.reapJunction(still)
	}
}

// MoveVertex mutates a vertex position in place and re-interns the axes of
// every incident segment so the segment axis invariant holds.
func (c *Circuit) MoveVertex(id VertexID, pos geom.Vec) {
	v := c.vertices[id]
	if v == nil {
		return
	}
	v.Pos = pos
	for sid := range v.Edges {
		c.refreshAxis(c.segments[sid])
	}
}

// refreshAxis re-acquires the interned axis from current endpoint
// positions. A momentarily zero-length segment keeps its previous axis, so
// identity is stable through a drag passing over itself.
func (c *Circuit) refreshAxis(s *Segment) {
	if s == nil {
		return
	}
	a := c.axes.Acquire(r2.Sub(c.vertices[s.End].Pos, c.vertices[s.Start].Pos))
	if a == nil {
		return
	}
	c.axes.Release(s.Axis)
	s.Axis = a
}

// SegmentDir returns the unit direction from start to end, false for a
// zero-length segment.
func (c *Circuit) SegmentDir(s *Segment) (geom.Vec, bool) {
	d := r2.Sub(c.vertices[s.End].Pos, c.vertices[s.Start].Pos)
	n := r2.Norm(d)
	if n == 0 {
		return geom.Vec{}, false
	}
	return r2.Scale(1/n, d), true
}

// SegmentEnds returns the endpoint positions of a segment.
func (c *Circuit) SegmentEnds(s *Segment) (geom.Vec, geom.Vec) {
	return c.vertices[s.Start].Pos, c.vertices[s.End].Pos
}

// SegmentLen returns the current segment length.
func (c *Circuit) SegmentLen(s *Segment) float64 {
	p, q := c.SegmentEnds(s)
	return geom.Dist(p, q)
}

// Attach hosts a junction on a segment or symbol without splitting it. The
// attach is refused (no-op, false) for non-junctions, missing hosts, or
// line-type pairs whose meeting table forbids attachment.
func (c *Circuit) Attach(id VertexID, host HostRef) bool {
	v := c.vertices[id]
	if v == nil || v.Kind != KindJunction {
		return false
	}
	switch host.Kind {
	case HostSegment:
		s := c.segments[host.Segment]
		if s == nil {
			return false
		}
		if !c.attachAllowed(v, s) {
			return false
		}
		c.unhost(v)
		s.Attached[id] = struct{}{}
	case HostSymbol:
		sym := c.symbols[host.Symbol]
		if sym == nil {
			return false
		}
		c.unhost(v)
		sym.Attached[id] = struct{}{}
	default:
		return false
	}
	v.Host = host
	return true
}

// unhost clears the attachment relation without reaping the junction, for
// re-hosting in place.
func (c *Circuit) unhost(v *Vertex) {
	switch v.Host.Kind {
	case HostSegment:
		if s := c.segments[v.Host.Segment]; s != nil {
			delete(s.Attached, v.ID)
		}
	case HostSymbol:
		if s := c.symbols[v.Host.Symbol]; s != nil {
			delete(s.Attached, v.ID)
		}
	}
	v.Host = HostRef{}
}

// attachAllowed consults the meeting tables of the junction's incident line
// types against the host segment's type.
func (c *Circuit) attachAllowed(v *Vertex, host *Segment) bool {
	ht := c.LineType(host.Type)
	if ht == nil {
		return true
	}
	for sid := range v.Edges {
		s := c.segments[sid]
		if s == nil {
			continue
		}
		if m, ok := ht.Meeting[s.Type]; ok && !m.Attaches {
			return false
		}
	}
	return true
}

// Detach releases a junction from its host; an edgeless junction is then
// reaped.
func (c *Circuit) Detach(id VertexID) {
	v := c.vertices[id]
	if v == nil || v.Host.Kind == HostNone {
		return
	}
	c.unhost(v)
	c.reapJunction(v)
}

// Bounds returns the bounding rectangle of everything in the circuit, false
// when the circuit is empty.
func (c *Circuit) Bounds() (geom.Rect, bool) {
	first := true
	var out geom.Rect
	add := func(r geom.Rect) {
		if first {
			out = r
			first = false
			return
		}
		out = out.Union(r)
	}
	for _, v := range c.vertices {
		add(geom.RectFromPoints(v.Pos, v.Pos))
	}
	for _, s := range c.symbols {
		add(s.CollisionBounds())
	}
	return out, !first
}
