package tools

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// pose is a symbol's full placement.
type pose struct {
	pos   geom.Vec
	rot   geom.Rotation
	scale geom.Vec
}

// snapshot records every movable position at gesture start. Update passes
// restore it first and recompute from scratch, which is what makes updates
// idempotent; Abort restores it and walks away.
type snapshot struct {
	vertices map[circuit.VertexID]geom.Vec
	symbols  map[circuit.SymbolID]pose
}

func takeSnapshot(c *circuit.Circuit) *snapshot {
	s := &snapshot{
		vertices: map[circuit.VertexID]geom.Vec{},
		symbols:  map[circuit.SymbolID]pose{},
	}
	for _, id := range c.VertexIDs() {
		s.vertices[id] = c.Vertex(id).Pos
	}
	for _, id := range c.SymbolIDs() {
		sym := c.Symbol(id)
		s.symbols[id] = pose{pos: sym.Pos, rot: sym.Rot, scale: sym.Scale}
	}
	return s
}

// restore puts every surviving element back. Symbols first, so their ports
// land on the symbol frame; then free junctions. Elements created after the
// snapshot are untouched, deleted ones are skipped.
func (s *snapshot) restore(c *circuit.Circuit) {
	symIDs := make([]circuit.SymbolID, 0, len(s.symbols))
	for id := range s.symbols {
		symIDs = append(symIDs, id)
	}
	sort.Slice(symIDs, func(i, j int) bool { return symIDs[i] < symIDs[j] })
	for _, id := range symIDs {
		p := s.symbols[id]
		c.SetSymbolPose(id, p.pos, p.rot, p.scale)
	}

	vIDs := make([]circuit.VertexID, 0, len(s.vertices))
	for id := range s.vertices {
		vIDs = append(vIDs, id)
	}
	sort.Slice(vIDs, func(i, j int) bool { return vIDs[i] < vIDs[j] })
	for _, id := range vIDs {
		v := c.Vertex(id)
		if v == nil || v.Kind != circuit.KindJunction {
			continue
		}
		c.MoveVertex(id, s.vertices[id])
	}
}

// marqueeOp is the shared shape of the rubber-band tools: drag out a
// rectangle (or click a single element) and hand the hits to an apply
// function on commit.
type marqueeOp struct {
	ed     *Editor
	origin geom.Vec
	apply  func(ed *Editor, refs []circuit.ElemRef)
}

func beginMarquee(ed *Editor, apply func(*Editor, []circuit.ElemRef)) Operation {
	return &marqueeOp{ed: ed, origin: ed.mouse, apply: apply}
}

func (op *marqueeOp) Update() {
	r := geom.RectFromPoints(op.origin, op.ed.mouse)
	op.ed.Rubber = &r
}

func (op *marqueeOp) End() {
	ed := op.ed
	ed.Rubber = nil
	var refs []circuit.ElemRef
	if geom.Dist(op.origin, ed.mouse) <= 2 {
		if ref, ok := ed.Circuit.HitTest(ed.mouse, ed.Cfg.SnapRadius); ok {
			refs = []circuit.ElemRef{ref}
		}
	} else {
		refs = ed.Circuit.ElementsIn(geom.RectFromPoints(op.origin, ed.mouse))
	}
	if len(refs) > 0 {
		op.apply(ed, refs)
	}
}

func (op *marqueeOp) Abort() {
	op.ed.Rubber = nil
}

func applyErase(ed *Editor, refs []circuit.ElemRef) {
	c := ed.Circuit
	for _, ref := range refs {
		switch ref.Kind {
		case circuit.ElemVertex:
			c.EraseVertex(ref.Vertex)
		case circuit.ElemSegment:
			if c.Segment(ref.Segment) != nil {
				c.DeleteSegment(ref.Segment)
			}
		case circuit.ElemSymbol:
			c.DeleteSymbol(ref.Symbol)
		}
	}
}

func applyFrozen(frozen bool) func(*Editor, []circuit.ElemRef) {
	return func(ed *Editor, refs []circuit.ElemRef) {
		for _, ref := range refs {
			if ref.Kind != circuit.ElemSegment {
				continue
			}
			if s := ed.Circuit.Segment(ref.Segment); s != nil {
				s.Frozen = frozen
			}
		}
	}
}

// applyQuery amasses the hits and describes the first one.
func applyQuery(ed *Editor, refs []circuit.ElemRef) {
	ed.Circuit.Amassed.Clear()
	for _, ref := range refs {
		ed.Circuit.Amassed.Add(ref)
	}
	ed.LastQuery = ed.Circuit.Describe(refs[0])
}
