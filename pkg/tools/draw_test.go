package tools

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

func TestDrawTeeSharesVertex(t *testing.T) {
	ed := newTestEditor()
	c := ed.Circuit
	drawSegment(t, ed, geom.V(0, 0), geom.V(100, 0), Mods{})
	first := c.Segment(c.SegmentIDs()[0])
	var shared circuit.VertexID
	if c.Vertex(first.Start).Pos.X == 100 {
		shared = first.Start
	} else {
		shared = first.End
	}

	drawSegment(t, ed, geom.V(100, 0), geom.V(100, 80), Mods{Shift: true})

	if got := len(c.SegmentIDs()); got != 2 {
		t.Fatalf("segment count = %d, want 2", got)
	}
	var second *circuit.Segment
	for _, id := range c.SegmentIDs() {
		if id != first.ID {
			second = c.Segment(id)
		}
	}
	if second.Start != shared && second.End != shared {
		t.Error("second draw did not reuse the first segment's end vertex")
	}
	if math.Abs(second.Axis.Dir().X) > 1e-9 {
		t.Errorf("second segment axis = %v, want vertical", second.Axis.Dir())
	}
	if got := c.Vertex(shared).Degree(); got != 2 {
		t.Errorf("shared vertex degree = %d, want 2", got)
	}
}

func TestDrawBelowMinLengthDiscards(t *testing.T) {
	ed := newTestEditor()
	drawSegment(t, ed, geom.V(0, 0), geom.V(9, 0), Mods{})

	if got := len(ed.Circuit.SegmentIDs()); got != 0 {
		t.Errorf("%d segments committed from a sub-minimum drag", got)
	}
	if got := len(ed.Circuit.VertexIDs()); got != 0 {
		t.Errorf("%d stray vertices left behind", got)
	}
}

func TestDrawSplitsIntoTee(t *testing.T) {
	ed := newTestEditor()
	drawSegment(t, ed, geom.V(0, 0), geom.V(100, 0), Mods{})

	// Start on the segment's interior, draw away perpendicular: the
	// segment splits and a tee junction carries all three edges.
	drawSegment(t, ed, geom.V(50, 0), geom.V(50, 60), Mods{})

	c := ed.Circuit
	if got := len(c.SegmentIDs()); got != 3 {
		t.Fatalf("segment count = %d, want 3", got)
	}
	ref, ok := c.HitTest(geom.V(50, 0), 1)
	if !ok || ref.Kind != circuit.ElemVertex {
		t.Fatal("no junction at the split point")
	}
	if got := c.Vertex(ref.Vertex).Degree(); got != 3 {
		t.Errorf("split junction degree = %d, want 3", got)
	}
}

func TestDrawCollinearDetach(t *testing.T) {
	ed := newTestEditor()
	drawSegment(t, ed, geom.V(0, 0), geom.V(100, 0), Mods{})

	// Start on the interior and drag along the segment: the gesture cuts
	// it and drags the severed half's end, opening a gap.
	drawSegment(t, ed, geom.V(50, 0), geom.V(80, 0), Mods{})

	c := ed.Circuit
	if got := len(c.SegmentIDs()); got != 2 {
		t.Fatalf("segment count = %d, want 2 severed halves", got)
	}
	if _, ok := c.HitTest(geom.V(65, 0), 1); ok {
		t.Error("no gap opened at the cut")
	}
	if ref, ok := c.HitTest(geom.V(80, 0), 1); !ok || ref.Kind != circuit.ElemVertex {
		t.Error("severed half's end did not follow the pointer")
	}
}

func TestDrawDetachBelowMinLengthHeals(t *testing.T) {
	ed := newTestEditor()
	drawSegment(t, ed, geom.V(0, 0), geom.V(100, 0), Mods{})

	drawSegment(t, ed, geom.V(50, 0), geom.V(58, 0), Mods{})

	c := ed.Circuit
	if got := len(c.SegmentIDs()); got != 1 {
		t.Fatalf("segment count = %d, want the healed original", got)
	}
	if got := c.SegmentLen(c.Segment(c.SegmentIDs()[0])); math.Abs(got-100) > 1e-9 {
		t.Errorf("healed segment length = %v, want 100", got)
	}
}

func TestDrawJoinOntoVertex(t *testing.T) {
	ed := newTestEditor()
	c := ed.Circuit
	target := c.NewJunction(geom.V(100, 50))

	drawSegment(t, ed, geom.V(100, 0), geom.V(100, 47), Mods{})

	if got := len(c.SegmentIDs()); got != 1 {
		t.Fatalf("segment count = %d, want 1", got)
	}
	s := c.Segment(c.SegmentIDs()[0])
	if s.Start != target.ID && s.End != target.ID {
		t.Error("draw did not join onto the snapped vertex")
	}
	if got := c.SegmentLen(s); math.Abs(got-50) > 1e-9 {
		t.Errorf("joined segment length = %v, want 50", got)
	}
}

func TestDrawExtendsInPlace(t *testing.T) {
	ed := newTestEditor()
	c := ed.Circuit
	drawSegment(t, ed, geom.V(0, 0), geom.V(100, 0), Mods{})

	// Continue from the free end along the same axis: the two collinear
	// runs fold into one segment.
	drawSegment(t, ed, geom.V(100, 0), geom.V(160, 0), Mods{})

	if got := len(c.SegmentIDs()); got != 1 {
		t.Fatalf("segment count = %d, want 1 merged run", got)
	}
	if got := c.SegmentLen(c.Segment(c.SegmentIDs()[0])); math.Abs(got-160) > 1e-9 {
		t.Errorf("merged length = %v, want 160", got)
	}
}

func TestDrawOverlapDiscards(t *testing.T) {
	ed := newTestEditor()
	c := ed.Circuit
	drawSegment(t, ed, geom.V(0, 0), geom.V(100, 0), Mods{})

	// Drawing back over the existing run from its end would overlap a
	// collinear sibling; the gesture is discarded.
	drawSegment(t, ed, geom.V(100, 0), geom.V(40, 0), Mods{})

	if got := len(c.SegmentIDs()); got != 1 {
		t.Fatalf("segment count = %d, want the original only", got)
	}
	if got := c.SegmentLen(c.Segment(c.SegmentIDs()[0])); math.Abs(got-100) > 1e-9 {
		t.Errorf("original length = %v, want 100", got)
	}
}

func TestDrawIdempotentUpdate(t *testing.T) {
	ed := newTestEditor()
	ed.PointerDown(geom.V(0, 0), Mods{})
	ed.PointerMove(geom.V(60, 5))
	first := dump(ed.Circuit)
	ed.PointerMove(geom.V(60, 5))
	second := dump(ed.Circuit)
	ed.PointerUp()
	if first != second {
		t.Errorf("repeated update drifted:\n%s\n%s", first, second)
	}
}

func TestDrawAbortLeavesNothing(t *testing.T) {
	ed := newTestEditor()
	ed.PointerDown(geom.V(0, 0), Mods{})
	ed.PointerMove(geom.V(80, 0))
	ed.CancelOp()

	if got := len(ed.Circuit.VertexIDs()) + len(ed.Circuit.SegmentIDs()); got != 0 {
		t.Errorf("%d elements left after abort", got)
	}
}

func TestDrawFreeRotation(t *testing.T) {
	ed := newTestEditor()
	ed.AngleSnap = false
	drawSegment(t, ed, geom.V(0, 0), geom.V(90, 30), Mods{Shift: true})

	c := ed.Circuit
	if got := len(c.SegmentIDs()); got != 1 {
		t.Fatalf("segment count = %d, want 1", got)
	}
	dir := c.Segment(c.SegmentIDs()[0]).Axis.Dir()
	want := math.Atan2(30, 90)
	if got := math.Atan2(dir.Y, dir.X); math.Abs(got-want) > 1e-9 {
		t.Errorf("free axis angle = %v, want %v", got, want)
	}
}
