package tools

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/snap"
)

// slideKey identifies a movable unit in a slide plan. Free junctions move
// individually; a symbol moves as one unit, its ports with it.
type slideKey struct {
	sym bool
	id  int
}

func vertexKey(id circuit.VertexID) slideKey { return slideKey{id: int(id)} }
func symbolKey(id circuit.SymbolID) slideKey { return slideKey{sym: true, id: int(id)} }

func (k slideKey) less(o slideKey) bool {
	if k.sym != o.sym {
		return !k.sym
	}
	return k.id < o.id
}

// slideEntry is one finalized instruction: at drag distance D the unit has
// moved by D minus its delay. push marks instructions that only take effect
// in push-all mode.
type slideEntry struct {
	delay float64
	push  bool
}

// slidePlan is the instruction table for one signed direction along the
// slide axis. minPush is the smallest push delay, i.e. the drag distance at
// which the moving front first contacts something it may not push.
type slidePlan struct {
	dir     geom.Vec
	units   map[slideKey]slideEntry
	minPush float64
}

type slideNode struct {
	key   slideKey
	delay float64
	push  bool
	index int
}

type slideQueue []*slideNode

func (q slideQueue) Len() int { return len(q) }
func (q slideQueue) Less(i, j int) bool {
	if q[i].delay != q[j].delay {
		return q[i].delay < q[j].delay
	}
	return q[i].key.less(q[j].key)
}
func (q slideQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *slideQueue) Push(x any) {
	n := x.(*slideNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *slideQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

type slideBuilder struct {
	c       *circuit.Circuit
	cfg     snap.Config
	dir     geom.Vec
	perp    geom.Vec
	spans   []circuit.ElemSpan
	queue   slideQueue
	pending map[slideKey]*slideNode
	plan    *slidePlan
}

// buildSlidePlan runs the delay relaxation for one signed direction: a
// shortest-path computation over the implicit graph whose edge weights are
// the stretch slack of axis-aligned edges and the gap-closing distances of
// potential pushes. Seeds start at delay zero.
func buildSlidePlan(c *circuit.Circuit, cfg snap.Config, seeds []slideKey, dir geom.Vec) *slidePlan {
	b := &slideBuilder{
		c:       c,
		cfg:     cfg,
		dir:     dir,
		perp:    geom.Perp(dir),
		spans:   c.ProjectAll(dir),
		pending: map[slideKey]*slideNode{},
		plan: &slidePlan{
			dir:     dir,
			units:   map[slideKey]slideEntry{},
			minPush: math.Inf(1),
		},
	}
	heap.Init(&b.queue)
	for _, k := range seeds {
		b.relax(k, 0, false)
	}
	for b.queue.Len() > 0 {
		n := heap.Pop(&b.queue).(*slideNode)
		delete(b.pending, n.key)
		b.plan.units[n.key] = slideEntry{delay: n.delay, push: n.push}
		if n.push && n.delay < b.plan.minPush {
			b.plan.minPush = n.delay
		}
		b.propagate(n.key, n.delay)
	}
	return b.plan
}

// relax proposes a delay for a unit, decreasing an already-queued proposal
// when the new one is smaller. On a tie a structural proposal beats a push.
func (b *slideBuilder) relax(k slideKey, delay float64, push bool) {
	if _, done := b.plan.units[k]; done {
		return
	}
	if n, ok := b.pending[k]; ok {
		if delay < n.delay || (delay == n.delay && n.push && !push) {
			n.delay = delay
			n.push = push
			heap.Fix(&b.queue, n.index)
		}
		return
	}
	n := &slideNode{key: k, delay: delay, push: push}
	b.pending[k] = n
	heap.Push(&b.queue, n)
}

func (b *slideBuilder) unitOf(v *circuit.Vertex) slideKey {
	if v.Kind == circuit.KindPort {
		return symbolKey(v.Symbol)
	}
	return vertexKey(v.ID)
}

func (b *slideBuilder) propagate(k slideKey, delay float64) {
	if k.sym {
		sym := b.c.Symbol(circuit.SymbolID(k.id))
		if sym == nil {
			return
		}
		for _, pid := range sym.Ports {
			if p := b.c.Vertex(pid); p != nil {
				b.propagateVertex(p, delay)
			}
		}
		for _, rid := range sortedVertexSet(sym.Attached) {
			b.relax(vertexKey(rid), delay, false)
		}
		bounds := sym.CollisionBounds()
		b.pushScan(k, bounds.ProjectOnto(b.dir), bounds.ProjectOnto(b.perp), delay)
		return
	}

	v := b.c.Vertex(circuit.VertexID(k.id))
	if v == nil {
		return
	}
	b.propagateVertex(v, delay)
	t := geom.Project(v.Pos, b.dir)
	o := geom.Project(v.Pos, b.perp)
	b.pushScan(k, geom.Range{Min: t, Max: t}, geom.Range{Min: o, Max: o}, delay)
}

// propagateVertex walks a vertex's edges: an edge along the slide axis that
// is not frozen stretches, so its far endpoint only starts moving after the
// edge's slack (length minus the standard gap) is used up; a frozen or
// off-axis edge carries its far endpoint rigidly at the same delay. Only
// endpoints ahead of the motion compress; edges behind stretch freely.
func (b *slideBuilder) propagateVertex(v *circuit.Vertex, delay float64) {
	for _, sid := range b.c.EdgeList(v) {
		s := b.c.Segment(sid)
		far := b.c.Vertex(v.Edges[sid])
		if s == nil || far == nil {
			continue
		}
		aligned := s.Axis != nil &&
			math.Abs(r2.Cross(s.Axis.Dir(), b.dir)) <= geom.DefaultAxisTolerance
		fk := b.unitOf(far)
		if aligned && !s.Frozen {
			ahead := geom.Project(r2.Sub(far.Pos, v.Pos), b.dir)
			if ahead > 0 {
				slack := ahead - b.cfg.Gap
				if slack < 0 {
					slack = 0
				}
				b.relax(fk, delay+slack, false)
			}
		} else {
			b.relax(fk, delay, false)
		}
		// Off-axis edges translate bodily, so riders on them come along.
		if !aligned {
			for _, rid := range sortedVertexSet(s.Attached) {
				b.relax(vertexKey(rid), delay, false)
			}
		}
	}

	switch v.Host.Kind {
	case circuit.HostSegment:
		host := b.c.Segment(v.Host.Segment)
		if host == nil {
			return
		}
		alongHost := host.Axis != nil &&
			math.Abs(r2.Cross(host.Axis.Dir(), b.dir)) <= geom.DefaultAxisTolerance
		// A rider slides freely along its host; across it, it drags the
		// host rigidly.
		if !alongHost {
			hv := b.c.Vertex(host.Start)
			if hv != nil {
				b.relax(b.unitOf(hv), delay, false)
			}
			hv = b.c.Vertex(host.End)
			if hv != nil {
				b.relax(b.unitOf(hv), delay, false)
			}
		}
	case circuit.HostSymbol:
		b.relax(symbolKey(v.Host.Symbol), delay, false)
	}
}

// pushScan proposes push instructions for every element that overlaps the
// finalized unit across the axis and sits strictly ahead of it along the
// axis, at the delay where the standard gap between them closes.
func (b *slideBuilder) pushScan(k slideKey, along, ortho geom.Range, delay float64) {
	for _, sp := range b.spans {
		if b.ownSpan(k, sp.Ref) {
			continue
		}
		if !sp.Ortho.Overlaps(ortho) || sp.Along.Min < along.Max {
			continue
		}
		d := delay + math.Max(0, sp.Along.Min-along.Max-b.cfg.Gap)
		switch sp.Ref.Kind {
		case circuit.ElemVertex:
			if v := b.c.Vertex(sp.Ref.Vertex); v != nil {
				b.relax(b.unitOf(v), d, true)
			}
		case circuit.ElemSegment:
			if s := b.c.Segment(sp.Ref.Segment); s != nil {
				if v := b.c.Vertex(s.Start); v != nil {
					b.relax(b.unitOf(v), d, true)
				}
				if v := b.c.Vertex(s.End); v != nil {
					b.relax(b.unitOf(v), d, true)
				}
			}
		case circuit.ElemSymbol:
			b.relax(symbolKey(sp.Ref.Symbol), d, true)
		}
	}
}

// ownSpan filters the finalized unit's own footprint out of the push scan.
func (b *slideBuilder) ownSpan(k slideKey, ref circuit.ElemRef) bool {
	switch ref.Kind {
	case circuit.ElemVertex:
		v := b.c.Vertex(ref.Vertex)
		return v != nil && b.unitOf(v) == k
	case circuit.ElemSegment:
		s := b.c.Segment(ref.Segment)
		if s == nil {
			return false
		}
		for _, vid := range [2]circuit.VertexID{s.Start, s.End} {
			if v := b.c.Vertex(vid); v != nil && b.unitOf(v) == k {
				return true
			}
		}
	case circuit.ElemSymbol:
		return k == symbolKey(ref.Symbol)
	}
	return false
}

// apply moves every unit whose instruction has activated at drag distance D.
// Without push-all, push instructions are inert and D is instead eased and
// clamped at the first contact, so nothing ever closes below the gap.
func (p *slidePlan) apply(c *circuit.Circuit, base *snapshot, D float64, pushAll bool, cfg snap.Config) {
	if D < 0 {
		D = 0
	}
	if !pushAll && !math.IsInf(p.minPush, 1) {
		if short := p.minPush - D; short > 0 {
			D += cfg.Ease(short)
		}
		if D > p.minPush {
			D = p.minPush
		}
	}

	keys := make([]slideKey, 0, len(p.units))
	for k := range p.units {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	for _, k := range keys {
		e := p.units[k]
		if e.delay > D || (e.push && !pushAll) {
			continue
		}
		off := r2.Scale(D-e.delay, p.dir)
		if k.sym {
			id := circuit.SymbolID(k.id)
			if b, ok := base.symbols[id]; ok && c.Symbol(id) != nil {
				c.MoveSymbol(id, r2.Add(b.pos, off))
			}
			continue
		}
		id := circuit.VertexID(k.id)
		if pos, ok := base.vertices[id]; ok {
			if v := c.Vertex(id); v != nil && v.Kind == circuit.KindJunction {
				c.MoveVertex(id, r2.Add(pos, off))
			}
		}
	}
}

func sortedVertexSet(m map[circuit.VertexID]struct{}) []circuit.VertexID {
	out := make([]circuit.VertexID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type slideOp struct {
	ed     *Editor
	snap   *snapshot
	origin geom.Vec
	seeds  []slideKey
	cands  []geom.Vec
	axis   geom.Vec
	locked bool
	plus   *slidePlan
	minus  *slidePlan
}

// beginSlide grabs the element under the pointer. The slide axis locks on
// the first real movement: a grabbed segment slides across itself, anything
// else along the nearest primary axis.
func beginSlide(ed *Editor) Operation {
	c := ed.Circuit
	ref, ok := c.HitTest(ed.mouse, ed.Cfg.SnapRadius)
	if !ok {
		return nil
	}
	op := &slideOp{ed: ed, snap: takeSnapshot(c), origin: ed.mouse}

	switch ref.Kind {
	case circuit.ElemVertex:
		v := c.Vertex(ref.Vertex)
		if v.Kind == circuit.KindPort {
			op.seeds = []slideKey{symbolKey(v.Symbol)}
		} else {
			op.seeds = []slideKey{vertexKey(v.ID)}
		}
		op.cands = []geom.Vec{geom.V(1, 0), geom.V(0, 1)}
	case circuit.ElemSegment:
		s := c.Segment(ref.Segment)
		for _, vid := range [2]circuit.VertexID{s.Start, s.End} {
			v := c.Vertex(vid)
			k := vertexKey(vid)
			if v.Kind == circuit.KindPort {
				k = symbolKey(v.Symbol)
			}
			op.seeds = append(op.seeds, k)
		}
		if s.Axis != nil {
			op.cands = []geom.Vec{s.Axis.Perp()}
		} else {
			op.cands = []geom.Vec{geom.V(1, 0), geom.V(0, 1)}
		}
	case circuit.ElemSymbol:
		op.seeds = []slideKey{symbolKey(ref.Symbol)}
		op.cands = []geom.Vec{geom.V(1, 0), geom.V(0, 1)}
	default:
		return nil
	}
	return op
}

func (op *slideOp) Update() {
	c := op.ed.Circuit
	op.snap.restore(c)

	drag := r2.Sub(op.ed.mouse, op.origin)
	if !op.locked {
		if r2.Norm(drag) <= dragDeadZone {
			return
		}
		dir, ok := snap.NearestDir(drag, op.cands)
		if !ok {
			return
		}
		op.axis = dir
		op.locked = true
		op.plus = buildSlidePlan(c, op.ed.Cfg, op.seeds, dir)
		op.minus = buildSlidePlan(c, op.ed.Cfg, op.seeds, r2.Scale(-1, dir))
	}

	D := geom.Project(drag, op.axis)
	plan := op.plus
	if D < 0 {
		plan = op.minus
		D = -D
	}
	plan.apply(c, op.snap, D, op.ed.mods.Alt, op.ed.Cfg)
}

func (op *slideOp) End() {
	op.ed.refresh()
}

func (op *slideOp) Abort() {
	op.snap.restore(op.ed.Circuit)
	op.ed.refresh()
}
