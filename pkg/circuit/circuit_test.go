package circuit

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// testLibrary builds the lookup tables the tests share: two line types with
// meeting entries and one symbol kind with two ports.
func testLibrary() *Library {
	return &Library{
		LineTypes: map[string]*LineType{
			"drain": {
				Name: "drain", Color: "#3060c0", Thickness: 2,
				Meeting: map[string]MeetingGlyphs{
					"drain":  {Crossing: "drain-bridge", L: "drain-elbow", T: "drain-tee", X: "drain-cross", Attaches: true},
					"supply": {Crossing: "iso-cross", Attaches: false},
				},
			},
			"supply": {
				Name: "supply", Color: "#c03030", Thickness: 2,
				Meeting: map[string]MeetingGlyphs{
					"supply": {Crossing: "supply-bridge", T: "supply-tee"},
					"drain":  {Crossing: "iso-cross"},
				},
			},
		},
		Symbols: map[string]*SymbolKind{
			"pump": {
				Name:      "pump",
				Bounds:    geom.R(-20, -10, 20, 10),
				Collision: geom.R(-20, -10, 20, 10),
				Ports: []PortOffset{
					{Name: "in", Offset: geom.V(-20, 0)},
					{Name: "out", Offset: geom.V(20, 0)},
				},
			},
		},
	}
}

func segBetween(t *testing.T, c *Circuit, a, b geom.Vec, typ string) *Segment {
	t.Helper()
	va := c.NewJunction(a)
	vb := c.NewJunction(b)
	s := c.NewSegmentBetween(va.ID, vb.ID, typ)
	if s == nil {
		t.Fatalf("NewSegmentBetween(%v, %v) failed", a, b)
	}
	return s
}

func TestSegmentAxisInvariantAfterMove(t *testing.T) {
	c := New(testLibrary())
	s := segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")

	h := s.Axis
	if got := h.Dir(); !geom.AlmostEqual(got, geom.V(1, 0), 1e-12) {
		t.Fatalf("horizontal axis dir = %v", got)
	}

	// Dragging the end vertex vertical must re-intern the axis.
	c.MoveVertex(s.End, geom.V(0, 80))
	if s.Axis == h {
		t.Error("axis identity unchanged after the segment turned vertical")
	}
	if got := math.Abs(s.Axis.Dir().X); got > 1e-9 {
		t.Errorf("axis is not vertical after move: dir=%v", s.Axis.Dir())
	}
	if issues := c.Validate(); len(issues) != 0 {
		t.Errorf("validate after move: %v", issues)
	}
}

func TestParallelSegmentsShareAxis(t *testing.T) {
	c := New(testLibrary())
	s1 := segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")
	s2 := segBetween(t, c, geom.V(0, 50), geom.V(-70, 50), "supply")

	if s1.Axis != s2.Axis {
		t.Error("two horizontal segments do not share one axis identity")
	}
	if got := c.Axes().Refs(s1.Axis); got != 2 {
		t.Errorf("axis refcount = %d, want 2", got)
	}

	c.DeleteSegment(s1.ID)
	if got := c.Axes().Refs(s2.Axis); got != 1 {
		t.Errorf("axis refcount after delete = %d, want 1", got)
	}
	c.DeleteSegment(s2.ID)
	if got := c.Axes().Len(); got != 0 {
		t.Errorf("registry not empty after last segment deleted: %d axes", got)
	}
}

func TestJunctionReapedWhenLastEdgeGone(t *testing.T) {
	c := New(testLibrary())
	s := segBetween(t, c, geom.V(0, 0), geom.V(10, 0), "drain")
	start, end := s.Start, s.End

	c.DeleteSegment(s.ID)
	if c.Vertex(start) != nil || c.Vertex(end) != nil {
		t.Error("edgeless junctions survived segment deletion")
	}
}

func TestSplitSegmentMigratesAttachment(t *testing.T) {
	c := New(testLibrary())
	s := segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")
	s.Frozen = true

	rider := c.NewJunction(geom.V(80, 0))
	if !c.Attach(rider.ID, HostRef{Kind: HostSegment, Segment: s.ID}) {
		t.Fatal("attach refused")
	}

	j := c.SplitSegment(s.ID, geom.V(30, 0))
	if j == nil {
		t.Fatal("split failed")
	}
	if !geom.AlmostEqual(j.Pos, geom.V(30, 0), 1e-9) {
		t.Errorf("split junction at %v", j.Pos)
	}
	if c.Segment(s.ID) != nil {
		t.Error("replaced segment still live")
	}
	if j.Degree() != 2 {
		t.Fatalf("split junction degree = %d, want 2", j.Degree())
	}

	host := c.Segment(c.Vertex(rider.ID).Host.Segment)
	if host == nil {
		t.Fatal("rider lost its host")
	}
	p, q := c.SegmentEnds(host)
	if geom.DistToSegment(p, q, rider.Pos) > 1e-9 {
		t.Errorf("rider re-homed to a segment it does not lie on: %v-%v", p, q)
	}
	if !host.Frozen {
		t.Error("frozen flag not carried to replacement")
	}
	if issues := c.Validate(); len(issues) != 0 {
		t.Errorf("validate after split: %v", issues)
	}
}

func TestSymbolPortsFollowFrame(t *testing.T) {
	c := New(testLibrary())
	sym := c.NewSymbol("pump", geom.V(100, 100), geom.IdentityRotation, geom.V(1, 1))
	if sym == nil {
		t.Fatal("NewSymbol failed")
	}
	in := c.Vertex(sym.Ports[0])
	if !geom.AlmostEqual(in.Pos, geom.V(80, 100), 1e-9) {
		t.Fatalf("port position = %v, want (80,100)", in.Pos)
	}

	c.SetSymbolPose(sym.ID, geom.V(100, 100), geom.RotationFromAngle(math.Pi/2), geom.V(1, 1))
	if !geom.AlmostEqual(in.Pos, geom.V(100, 80), 1e-9) {
		t.Errorf("port after rotation = %v, want (100,80)", in.Pos)
	}
}

func TestDeleteSymbolConvertsConnectedPorts(t *testing.T) {
	c := New(testLibrary())
	sym := c.NewSymbol("pump", geom.V(0, 0), geom.IdentityRotation, geom.V(1, 1))
	out := sym.Ports[1]

	far := c.NewJunction(geom.V(120, 0))
	s := c.NewSegmentBetween(out, far.ID, "drain")
	if s == nil {
		t.Fatal("segment to port failed")
	}

	c.DeleteSymbol(sym.ID)
	v := c.Vertex(out)
	if v == nil {
		t.Fatal("connected port deleted with its symbol")
	}
	if v.Kind != KindJunction {
		t.Error("connected port was not converted to a junction")
	}
	if c.Vertex(sym.Ports[0]) != nil {
		t.Error("bare port survived symbol deletion")
	}
	if c.Segment(s.ID) == nil {
		t.Error("segment did not survive symbol deletion")
	}
}

func TestNewSegmentDegenerate(t *testing.T) {
	c := New(testLibrary())
	v := c.NewJunction(geom.V(0, 0))
	w := c.NewJunction(geom.V(0, 0))
	if s := c.NewSegmentBetween(v.ID, v.ID, "drain"); s != nil {
		t.Error("self-loop accepted")
	}
	if s := c.NewSegmentBetween(v.ID, w.ID, "drain"); s != nil {
		t.Error("zero-length segment accepted")
	}
	if s := c.NewSegmentBetween(v.ID, VertexID(999), "drain"); s != nil {
		t.Error("missing endpoint accepted")
	}
}

func TestAttachRefusedByMeetingTable(t *testing.T) {
	c := New(testLibrary())
	host := segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")

	// A junction with an incident supply edge may not attach to drain:
	// drain's meeting table says supply does not attach.
	sup := segBetween(t, c, geom.V(50, 10), geom.V(50, 80), "supply")
	rider := c.Vertex(sup.Start)
	if c.Attach(rider.ID, HostRef{Kind: HostSegment, Segment: host.ID}) {
		t.Error("attach allowed against the meeting table")
	}

	free := c.NewJunction(geom.V(20, 0))
	if !c.Attach(free.ID, HostRef{Kind: HostSegment, Segment: host.ID}) {
		t.Error("attach of a bare junction refused")
	}
}
