package tools

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// warpOp moves a free-form selection: pan without Shift, rigid rotation
// about the selection centroid with Shift. Both modes ease toward "nice"
// resting placements with the shared snap curve.
type warpOp struct {
	ed       *Editor
	snap     *snapshot
	origin   geom.Vec
	verts    map[circuit.VertexID]bool
	syms     map[circuit.SymbolID]bool
	centroid geom.Vec
}

// beginWarp grabs the element under the pointer, or the whole amassed
// selection when the grabbed element is part of it.
func beginWarp(ed *Editor) Operation {
	c := ed.Circuit
	ref, ok := c.HitTest(ed.mouse, ed.Cfg.SnapRadius)
	if !ok {
		return nil
	}
	op := &warpOp{
		ed:     ed,
		snap:   takeSnapshot(c),
		origin: ed.mouse,
		verts:  map[circuit.VertexID]bool{},
		syms:   map[circuit.SymbolID]bool{},
	}
	if !c.Amassed.Empty() && c.Amassed.Has(ref) {
		for id := range c.Amassed.Vertices {
			op.collect(circuit.VertexRef(id))
		}
		for id := range c.Amassed.Segments {
			op.collect(circuit.SegmentRef(id))
		}
		for id := range c.Amassed.Symbols {
			op.collect(circuit.SymbolRef(id))
		}
	} else {
		op.collect(ref)
	}
	if len(op.verts) == 0 && len(op.syms) == 0 {
		return nil
	}

	var sum geom.Vec
	n := 0
	for id := range op.verts {
		sum = r2.Add(sum, op.snap.vertices[id])
		n++
	}
	for id := range op.syms {
		sum = r2.Add(sum, op.snap.symbols[id].pos)
		n++
	}
	op.centroid = r2.Scale(1/float64(n), sum)
	return op
}

func (op *warpOp) collect(ref circuit.ElemRef) {
	c := op.ed.Circuit
	switch ref.Kind {
	case circuit.ElemVertex:
		v := c.Vertex(ref.Vertex)
		if v == nil {
			return
		}
		if v.Kind == circuit.KindPort {
			op.syms[v.Symbol] = true
		} else {
			op.verts[v.ID] = true
		}
	case circuit.ElemSegment:
		s := c.Segment(ref.Segment)
		if s == nil {
			return
		}
		op.collect(circuit.VertexRef(s.Start))
		op.collect(circuit.VertexRef(s.End))
	case circuit.ElemSymbol:
		op.syms[ref.Symbol] = true
	}
}

func (op *warpOp) participant(id circuit.VertexID) bool {
	if op.verts[id] {
		return true
	}
	v := op.ed.Circuit.Vertex(id)
	return v != nil && v.Kind == circuit.KindPort && op.syms[v.Symbol]
}

func (op *warpOp) sortedVerts() []circuit.VertexID {
	out := make([]circuit.VertexID, 0, len(op.verts))
	for id := range op.verts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (op *warpOp) sortedSyms() []circuit.SymbolID {
	out := make([]circuit.SymbolID, 0, len(op.syms))
	for id := range op.syms {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (op *warpOp) Update() {
	c := op.ed.Circuit
	op.snap.restore(c)
	if op.ed.mods.Shift {
		op.rotate()
	} else {
		op.pan()
	}
}

func (op *warpOp) pan() {
	c := op.ed.Circuit
	delta := r2.Sub(op.ed.mouse, op.origin)
	delta = r2.Add(delta, op.panAdjust(delta))
	for _, id := range op.sortedSyms() {
		c.MoveSymbol(id, r2.Add(op.snap.symbols[id].pos, delta))
	}
	for _, id := range op.sortedVerts() {
		if c.Vertex(id) != nil {
			c.MoveVertex(id, r2.Add(op.snap.vertices[id], delta))
		}
	}
}

// panCand is one square-up opportunity: displacing the selection by w makes
// one boundary edge land on the axis; keeping the displacement anywhere on
// ln keeps that edge on it.
type panCand struct {
	w    geom.Vec
	r    float64
	ln   geom.Line
	edge int
}

var warpAxes = []geom.Vec{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
	{X: math.Sqrt2 / 2, Y: -math.Sqrt2 / 2},
}

// panAdjust computes the easing correction for a pan: over every boundary
// edge (a moved endpoint connected to an unmoved one) and every candidate
// axis, the displacement zeroing that edge's perpendicular rejection. The
// nearest one eases in; when the two nearest, from different edges,
// intersect in displacement space, the pan eases toward squaring both up at
// once.
func (op *warpOp) panAdjust(delta geom.Vec) geom.Vec {
	cands := op.panCands(delta)
	if len(cands) == 0 {
		return geom.Vec{}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].r < cands[j].r })
	cfg := op.ed.Cfg

	first := cands[0]
	if cfg.Ease(first.r) == 0 {
		return geom.Vec{}
	}
	for _, second := range cands[1:] {
		if second.edge == first.edge {
			continue
		}
		if cfg.Ease(second.r) == 0 {
			break
		}
		if math.Abs(r2.Cross(first.ln.D, second.ln.D)) <= geom.DefaultAxisTolerance {
			continue
		}
		target, ok := geom.IntersectLines(first.ln, second.ln)
		if !ok {
			continue
		}
		w := r2.Sub(target, delta)
		d := r2.Norm(w)
		if e := cfg.Ease(d); e > 0 {
			if d == 0 || e >= d {
				return w
			}
			return r2.Scale(e/d, w)
		}
		break
	}

	e := cfg.Ease(first.r)
	if first.r == 0 || e >= first.r {
		return first.w
	}
	return r2.Scale(e/first.r, first.w)
}

func (op *warpOp) panCands(delta geom.Vec) []panCand {
	c := op.ed.Circuit
	var cands []panCand
	edge := 0
	for _, vid := range op.sortedVerts() {
		v := c.Vertex(vid)
		if v == nil {
			continue
		}
		base := op.snap.vertices[vid]
		for _, sid := range c.EdgeList(v) {
			farID := v.Edges[sid]
			if op.participant(farID) {
				continue
			}
			far := c.Vertex(farID)
			if far == nil {
				continue
			}
			moved := r2.Add(base, delta)
			for _, a := range warpAxes {
				rej := geom.Reject(r2.Sub(moved, far.Pos), a)
				cands = append(cands, panCand{
					w:    r2.Scale(-rej, geom.Perp(a)),
					r:    math.Abs(rej),
					ln:   geom.Line{P: r2.Sub(far.Pos, base), D: a},
					edge: edge,
				})
			}
			edge++
		}
	}
	return cands
}

func (op *warpOp) rotate() {
	c := op.ed.Circuit
	v1 := r2.Sub(op.ed.mouse, op.centroid)
	rot, ok := geom.RotationBetween(r2.Sub(op.origin, op.centroid), v1)
	if !ok {
		return
	}
	angle := rot.Angle()

	// Ease toward the nearest key rotation, measured as arc length at the
	// pointer's radius so the feel matches the linear snaps.
	if arm := r2.Norm(v1); arm > 0 {
		if k, ok := op.nearestKeyRotation(angle); ok {
			diff := wrapAngle(k - angle)
			d := math.Abs(diff) * arm
			if e := op.ed.Cfg.Ease(d); e > 0 {
				if e >= d {
					angle = k
				} else if diff > 0 {
					angle += e / arm
				} else {
					angle -= e / arm
				}
			}
		}
	}

	r := geom.RotationFromAngle(angle)
	for _, id := range op.sortedSyms() {
		base := op.snap.symbols[id]
		c.SetSymbolPose(id, r.ApplyAbout(base.pos, op.centroid), r.Mul(base.rot), base.scale)
	}
	for _, id := range op.sortedVerts() {
		if c.Vertex(id) != nil {
			c.MoveVertex(id, r.ApplyAbout(op.snap.vertices[id], op.centroid))
		}
	}
}

// nearestKeyRotation finds the rotation closest to angle that lands one of
// the selection's internal edges, or a symbol's intrinsic axis, on a
// canonical axis.
func (op *warpOp) nearestKeyRotation(angle float64) (float64, bool) {
	c := op.ed.Circuit
	best := math.Inf(1)
	var key float64
	consider := func(k float64) {
		if d := math.Abs(wrapAngle(k - angle)); d < best {
			best = d
			key = k
		}
	}

	for _, vid := range op.sortedVerts() {
		v := c.Vertex(vid)
		if v == nil {
			continue
		}
		for _, sid := range c.EdgeList(v) {
			farID := v.Edges[sid]
			if farID <= vid || !op.participant(farID) {
				continue
			}
			base := math.Atan2(
				op.snap.vertices[farID].Y-op.snap.vertices[vid].Y,
				op.snap.vertices[farID].X-op.snap.vertices[vid].X,
			)
			for i := 0; i < 8; i++ {
				consider(wrapAngle(float64(i)*math.Pi/4 - base))
			}
		}
	}
	for _, id := range op.sortedSyms() {
		base := op.snap.symbols[id].rot.Angle()
		for i := 0; i < 8; i++ {
			consider(wrapAngle(float64(i)*math.Pi/4 - base))
		}
	}
	return key, !math.IsInf(best, 1)
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func (op *warpOp) End() {
	op.ed.refresh()
}

func (op *warpOp) Abort() {
	op.snap.restore(op.ed.Circuit)
	op.ed.refresh()
}
