package tools

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/snap"
)

// drawState is the draw tool's axis mode. Shift switches between strafing
// and rotation; the editor's AngleSnap setting picks which rotation.
type drawState int

const (
	drawStrafe drawState = iota
	drawSnapped
	drawFree
)

// dragDeadZone is how far the pointer must travel before a strafe axis is
// chosen or a slide axis locks.
const dragDeadZone = 2

type drawOp struct {
	ed   *Editor
	snap *snapshot

	origin       geom.Vec
	start        circuit.VertexID
	startCreated bool // begin created the start junction
	startSplit   bool // begin split a segment to get the start junction

	end  circuit.VertexID
	seg  circuit.SegmentID // provisional segment, -1 until the end moves
	join circuit.VertexID  // existing vertex the end is snapped onto, -1 none

	axis       geom.Vec
	axisLocked bool

	detached  bool // collinear cut: dragging a severed half
	detachFar circuit.VertexID
}

// beginDraw anchors a draw gesture: on an existing vertex it continues from
// it, on a segment it splits a junction in (which the first update may turn
// into a detach cut if the draw axis is collinear), elsewhere it plants a
// fresh junction.
func beginDraw(ed *Editor) Operation {
	c := ed.Circuit
	op := &drawOp{ed: ed, snap: takeSnapshot(c), seg: -1, join: -1}
	p := ed.mouse

	if v, ok := snap.NearestVertex(c, p, ed.Cfg.SnapRadius, nil); ok {
		op.start = v.ID
		op.origin = v.Pos
	} else if ref, ok := c.HitTest(p, ed.Cfg.SnapRadius); ok && ref.Kind == circuit.ElemSegment {
		s := c.Segment(ref.Segment)
		a, b := c.SegmentEnds(s)
		j := c.SplitSegment(ref.Segment, geom.ClosestOnSegment(a, b, p))
		if j == nil {
			return nil
		}
		op.start = j.ID
		op.origin = j.Pos
		op.startSplit = true
	} else {
		j := c.NewJunction(p)
		op.start = j.ID
		op.origin = p
		op.startCreated = true
	}

	op.end = c.NewJunction(op.origin).ID
	return op
}

func (op *drawOp) state() drawState {
	switch {
	case !op.ed.mods.Shift:
		return drawStrafe
	case op.ed.AngleSnap:
		return drawSnapped
	default:
		return drawFree
	}
}

func (op *drawOp) Update() {
	ed, c := op.ed, op.ed.Circuit
	drag := r2.Sub(ed.mouse, op.origin)
	st := op.state()

	var dir geom.Vec
	switch st {
	case drawStrafe:
		if !op.axisLocked {
			if r2.Norm(drag) <= dragDeadZone {
				op.moveEnd(op.origin)
				return
			}
			if math.Abs(drag.X) >= math.Abs(drag.Y) {
				op.axis = geom.V(1, 0)
			} else {
				op.axis = geom.V(0, 1)
			}
			op.axisLocked = true
		}
		dir = op.axis
	case drawSnapped:
		d, ok := snap.NearestDir(drag, snap.AxisChoices(c, c.Vertex(op.start), true))
		if !ok {
			op.moveEnd(op.origin)
			return
		}
		dir = d
	case drawFree:
		n := r2.Norm(drag)
		if n == 0 {
			op.moveEnd(op.origin)
			return
		}
		dir = r2.Scale(1/n, drag)
	}

	if op.startSplit && !op.detached && st != drawFree {
		op.maybeDetach(dir, drag)
	}
	if op.detached {
		op.updateDetached(drag)
		return
	}

	target := ed.mouse
	if st != drawFree {
		target = r2.Add(op.origin, r2.Scale(geom.Project(drag, dir), dir))
	}

	op.join = -1
	if v, ok := snap.NearestVertex(c, target, ed.Cfg.SnapRadius, op.rejectJoin(dir)); ok {
		target = v.Pos
		op.join = v.ID
	} else if st != drawFree {
		if ray, ok := geom.LineThrough(op.origin, dir); ok {
			if p, ok := ed.Cfg.ToSegmentsAlong(c, ray, target, op.skipSegs()); ok {
				target = p
			} else if p, ok := ed.Cfg.ToGap(c, dir, target, op.skipRefs()); ok {
				target = p
			}
		}
	}
	op.moveEnd(target)
}

// moveEnd moves the provisional endpoint, creating the provisional segment
// the first time the end leaves the origin.
func (op *drawOp) moveEnd(target geom.Vec) {
	c := op.ed.Circuit
	c.MoveVertex(op.end, target)
	if op.seg < 0 && geom.Dist2(target, op.origin) > 0 {
		if s := c.NewSegmentBetween(op.start, op.end, op.ed.LineType); s != nil {
			op.seg = s.ID
		}
	}
}

// rejectJoin filters vertex-snap candidates: never the gesture's own
// endpoints, and never a vertex carrying a collinear edge that heads back
// toward the draw origin, which the committed segment would overlap.
func (op *drawOp) rejectJoin(dir geom.Vec) func(*circuit.Vertex) bool {
	c := op.ed.Circuit
	return func(v *circuit.Vertex) bool {
		if v.ID == op.start || v.ID == op.end {
			return true
		}
		for sid, farID := range v.Edges {
			s := c.Segment(sid)
			if s == nil || s.Axis == nil {
				continue
			}
			if math.Abs(r2.Cross(s.Axis.Dir(), dir)) > geom.DefaultAxisTolerance {
				continue
			}
			far := c.Vertex(farID)
			if far != nil && r2.Dot(r2.Sub(far.Pos, v.Pos), r2.Sub(op.origin, v.Pos)) > 0 {
				return true
			}
		}
		return false
	}
}

// skipSegs lists the segments the crossing snap must ignore: the provisional
// segment and everything already incident to the start vertex.
func (op *drawOp) skipSegs() map[circuit.SegmentID]bool {
	skip := map[circuit.SegmentID]bool{}
	if op.seg >= 0 {
		skip[op.seg] = true
	}
	if v := op.ed.Circuit.Vertex(op.start); v != nil {
		for sid := range v.Edges {
			skip[sid] = true
		}
	}
	return skip
}

// skipRefs excludes the gesture's own elements from gap snapping.
func (op *drawOp) skipRefs() func(circuit.ElemRef) bool {
	skip := op.skipSegs()
	return func(ref circuit.ElemRef) bool {
		switch ref.Kind {
		case circuit.ElemVertex:
			return ref.Vertex == op.start || ref.Vertex == op.end
		case circuit.ElemSegment:
			return skip[ref.Segment]
		}
		return false
	}
}

// maybeDetach turns a split-anchored gesture into a detach cut when the
// chosen axis is collinear with the severed halves: the half ahead of the
// drag gets re-ended onto the provisional junction, which then follows the
// pointer and opens a gap.
func (op *drawOp) maybeDetach(dir, drag geom.Vec) {
	if op.seg >= 0 {
		return
	}
	c := op.ed.Circuit
	v := c.Vertex(op.start)
	if v == nil || v.Degree() != 2 {
		return
	}
	halves := c.EdgeList(v)
	s0 := c.Segment(halves[0])
	if s0 == nil || s0.Axis == nil {
		return
	}
	if math.Abs(r2.Cross(s0.Axis.Dir(), dir)) > geom.DefaultAxisTolerance {
		return
	}
	if geom.Project(drag, dir) < 0 {
		dir = r2.Scale(-1, dir)
	}
	for _, sid := range halves {
		far := v.Edges[sid]
		fv := c.Vertex(far)
		if fv == nil || geom.Project(r2.Sub(fv.Pos, v.Pos), dir) <= 0 {
			continue
		}
		parts := c.ReplaceSegment(sid, [2]circuit.VertexID{op.end, far})
		if len(parts) != 1 {
			return
		}
		op.seg = parts[0].ID
		op.detachFar = far
		op.detached = true
		op.axis = dir
		op.axisLocked = true
		return
	}
}

// updateDetached drags the severed half's cut end along the axis, clamped
// so the half keeps positive length and never crosses back over the cut.
func (op *drawOp) updateDetached(drag geom.Vec) {
	c := op.ed.Circuit
	far := c.Vertex(op.detachFar)
	if far == nil {
		return
	}
	t := geom.Project(drag, op.axis)
	max := geom.Dist(op.origin, far.Pos) - op.ed.Cfg.EndpointBuffer
	if max < 0 {
		max = 0
	}
	if t < 0 {
		t = 0
	} else if t > max {
		t = max
	}
	c.MoveVertex(op.end, r2.Add(op.origin, r2.Scale(t, op.axis)))
}

func (op *drawOp) End() {
	ed, c := op.ed, op.ed.Circuit
	defer ed.refresh()

	if op.detached {
		if geom.Dist2(op.origin, c.Vertex(op.end).Pos) <= ed.Cfg.MinDrawLen2 {
			op.reattach()
		}
		return
	}

	endPos := c.Vertex(op.end).Pos
	if op.seg < 0 || geom.Dist2(op.origin, endPos) <= ed.Cfg.MinDrawLen2 || op.overlapsSibling() {
		op.discard()
		return
	}

	if op.join >= 0 && c.Vertex(op.join) != nil {
		// Re-end the provisional segment onto the snapped vertex; the
		// provisional junction reaps with it.
		c.ReplaceSegment(op.seg, [2]circuit.VertexID{op.start, op.join})
		op.mergeCollinearAt(op.join)
	}
	op.mergeCollinearAt(op.start)
}

func (op *drawOp) Abort() {
	if op.detached {
		op.reattach()
	} else {
		op.discard()
	}
	op.snap.restore(op.ed.Circuit)
	op.ed.refresh()
}

// discard removes everything the gesture created and heals a begin-time
// split by merging the halves back together.
func (op *drawOp) discard() {
	c := op.ed.Circuit
	if op.seg >= 0 {
		c.DeleteSegment(op.seg)
	}
	if c.Vertex(op.end) != nil {
		c.EraseVertex(op.end)
	}
	if op.startCreated && c.Vertex(op.start) != nil {
		c.EraseVertex(op.start)
	}
	if op.startSplit {
		c.ConvertToCrossing(op.start)
	}
}

// reattach undoes a detach cut: the severed half goes back onto the cut
// junction and the two halves merge into the original segment.
func (op *drawOp) reattach() {
	c := op.ed.Circuit
	if c.Segment(op.seg) != nil {
		c.ReplaceSegment(op.seg, [2]circuit.VertexID{op.start, op.detachFar})
	}
	c.ConvertToCrossing(op.start)
}

// mergeCollinearAt extends in place: a commit that leaves exactly two
// collinear same-type edges at a vertex folds them into one segment.
func (op *drawOp) mergeCollinearAt(id circuit.VertexID) {
	c := op.ed.Circuit
	if v := c.Vertex(id); v != nil && v.IsJunction() && v.Degree() == 2 {
		c.ConvertToCrossing(id)
	}
}

// overlapsSibling reports whether the committed segment would lie on top of
// a collinear edge already present at either endpoint.
func (op *drawOp) overlapsSibling() bool {
	c := op.ed.Circuit
	s := c.Segment(op.seg)
	if s == nil || s.Axis == nil {
		return false
	}
	ends := []circuit.VertexID{op.start}
	if op.join >= 0 {
		ends = append(ends, op.join)
	}
	for _, vid := range ends {
		v := c.Vertex(vid)
		if v == nil {
			continue
		}
		away := r2.Sub(c.Vertex(op.end).Pos, v.Pos)
		if vid == op.join {
			away = r2.Sub(op.origin, v.Pos)
		}
		sids := make([]circuit.SegmentID, 0, len(v.Edges))
		for sid := range v.Edges {
			sids = append(sids, sid)
		}
		sort.Slice(sids, func(i, j int) bool { return sids[i] < sids[j] })
		for _, sid := range sids {
			if sid == op.seg {
				continue
			}
			other := c.Segment(sid)
			if other == nil || other.Axis != s.Axis {
				continue
			}
			far := c.Vertex(v.Edges[sid])
			if far != nil && r2.Dot(r2.Sub(far.Pos, v.Pos), away) > 0 {
				return true
			}
		}
	}
	return false
}
