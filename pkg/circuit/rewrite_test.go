package circuit

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// xJunction builds a four-edge junction at (50,50): a horizontal drain run
// and a vertical drain run meeting in the middle.
func xJunction(t *testing.T, c *Circuit) *Vertex {
	t.Helper()
	mid := c.NewJunction(geom.V(50, 50))
	west := c.NewJunction(geom.V(0, 50))
	east := c.NewJunction(geom.V(100, 50))
	north := c.NewJunction(geom.V(50, 0))
	south := c.NewJunction(geom.V(50, 100))
	for _, far := range []VertexID{west.ID, east.ID, north.ID, south.ID} {
		if s := c.NewSegmentBetween(mid.ID, far, "drain"); s == nil {
			t.Fatal("failed to build X junction")
		}
	}
	return mid
}

func TestConvertToCrossingFourEdges(t *testing.T) {
	c := New(testLibrary())
	mid := xJunction(t, c)

	if !c.ConvertToCrossing(mid.ID) {
		t.Fatal("ConvertToCrossing refused a legal X junction")
	}
	if c.Vertex(mid.ID) != nil {
		t.Error("dissolved junction still live")
	}
	if got := len(c.SegmentIDs()); got != 2 {
		t.Fatalf("segment count after merge = %d, want 2", got)
	}

	xs := c.Crossings()
	if len(xs) != 1 {
		t.Fatalf("crossing count = %d, want 1", len(xs))
	}
	if !geom.AlmostEqual(xs[0].At, geom.V(50, 50), 1e-9) {
		t.Errorf("crossing at %v, want (50,50)", xs[0].At)
	}
	if !c.IsMarked(xs[0].Pair.A, xs[0].Pair.B) {
		t.Error("user-made crossing was not pinned in the marked set")
	}
	if issues := c.Validate(); len(issues) != 0 {
		t.Errorf("validate: %v", issues)
	}
}

func TestConvertToCrossingRefusals(t *testing.T) {
	c := New(testLibrary())

	// Three edges never form two collinear pairs.
	mid := c.NewJunction(geom.V(0, 0))
	for _, p := range []geom.Vec{{X: -50}, {X: 50}, {Y: 50}} {
		far := c.NewJunction(p)
		c.NewSegmentBetween(mid.ID, far.ID, "drain")
	}
	if c.ConvertToCrossing(mid.ID) {
		t.Error("three-edge junction converted")
	}

	// Two collinear edges of different types must refuse.
	c2 := New(testLibrary())
	mid2 := c2.NewJunction(geom.V(0, 0))
	a := c2.NewJunction(geom.V(-50, 0))
	b := c2.NewJunction(geom.V(50, 0))
	c2.NewSegmentBetween(mid2.ID, a.ID, "drain")
	c2.NewSegmentBetween(mid2.ID, b.ID, "supply")
	if c2.ConvertToCrossing(mid2.ID) {
		t.Error("mixed-type pair converted")
	}
	if c2.Vertex(mid2.ID) == nil || len(c2.SegmentIDs()) != 2 {
		t.Error("refused conversion was not a no-op")
	}

	// Two edges on the same side (overlapping) must refuse.
	c3 := New(testLibrary())
	mid3 := c3.NewJunction(geom.V(0, 0))
	f1 := c3.NewJunction(geom.V(50, 0))
	f2 := c3.NewJunction(geom.V(90, 0))
	c3.NewSegmentBetween(mid3.ID, f1.ID, "drain")
	c3.NewSegmentBetween(mid3.ID, f2.ID, "drain")
	if c3.ConvertToCrossing(mid3.ID) {
		t.Error("same-side collinear pair converted")
	}
}

func TestCrossingJunctionInverseLaw(t *testing.T) {
	c := New(testLibrary())
	mid := xJunction(t, c)
	mid.Glyph = "drain-dot"

	// Attach a rider near the east arm and freeze the horizontal run.
	rider := c.NewJunction(geom.V(80, 50))
	var horizontal SegmentID
	for sid, far := range mid.Edges {
		if c.Vertex(far).Pos.Y == 50 {
			c.Segment(sid).Frozen = true
			if c.Vertex(far).Pos.X > 50 {
				horizontal = sid
			}
		}
	}
	if !c.Attach(rider.ID, HostRef{Kind: HostSegment, Segment: horizontal}) {
		t.Fatal("attach failed")
	}

	if !c.ConvertToCrossing(mid.ID) {
		t.Fatal("ConvertToCrossing refused")
	}
	xs := c.Crossings()
	if len(xs) != 1 {
		t.Fatalf("crossing count = %d, want 1", len(xs))
	}

	back := c.ConvertToJunction(xs[0].Pair.A, xs[0].Pair.B)
	if back == nil {
		t.Fatal("ConvertToJunction refused the crossing")
	}
	if !geom.AlmostEqual(back.Pos, geom.V(50, 50), 1e-9) {
		t.Errorf("restored junction at %v, want (50,50)", back.Pos)
	}
	if back.Degree() != 4 {
		t.Errorf("restored junction degree = %d, want 4", back.Degree())
	}
	if back.Glyph != "drain-dot" {
		t.Errorf("glyph override lost: %q", back.Glyph)
	}
	for sid, far := range back.Edges {
		s := c.Segment(sid)
		if s.Type != "drain" {
			t.Errorf("incident type %q, want drain", s.Type)
		}
		// Both horizontal arms were frozen; the AND carried through the
		// merge and back through the split.
		if horizontalArm := c.Vertex(far).Pos.Y == 50; horizontalArm != s.Frozen {
			t.Errorf("rigidity not preserved on segment #%d", sid)
		}
	}

	// The rider must still sit on a live host through both conversions.
	v := c.Vertex(rider.ID)
	if v == nil || v.Host.Kind != HostSegment {
		t.Fatal("rider lost its attachment")
	}
	host := c.Segment(v.Host.Segment)
	p, q := c.SegmentEnds(host)
	if geom.DistToSegment(p, q, v.Pos) > 1e-9 {
		t.Error("rider host does not pass through the rider")
	}
	if issues := c.Validate(); len(issues) != 0 {
		t.Errorf("validate: %v", issues)
	}
}

func TestTwoEdgeMergeAndSplitRoundTrip(t *testing.T) {
	c := New(testLibrary())
	mid := c.NewJunction(geom.V(40, 0))
	a := c.NewJunction(geom.V(0, 0))
	b := c.NewJunction(geom.V(100, 0))
	s1 := c.NewSegmentBetween(mid.ID, a.ID, "drain")
	s2 := c.NewSegmentBetween(mid.ID, b.ID, "drain")
	s1.Frozen = true
	s2.Frozen = true

	if !c.ConvertToCrossing(mid.ID) {
		t.Fatal("two-edge merge refused")
	}
	ids := c.SegmentIDs()
	if len(ids) != 1 {
		t.Fatalf("segment count = %d, want 1", len(ids))
	}
	merged := c.Segment(ids[0])
	if !merged.Frozen {
		t.Error("AND of two frozen halves lost")
	}
	if got := c.SegmentLen(merged); got != 100 {
		t.Errorf("merged length = %v, want 100", got)
	}

	j := c.SplitSegment(merged.ID, geom.V(40, 0))
	if j == nil || j.Degree() != 2 {
		t.Fatal("split did not restore a two-edge junction")
	}
	for sid := range j.Edges {
		s := c.Segment(sid)
		if s.Type != "drain" || !s.Frozen {
			t.Error("split halves lost type or rigidity")
		}
	}
}

func TestConvertToJunctionMigratesCrossingStyles(t *testing.T) {
	c := New(testLibrary())
	// Horizontal drain crossed by two vertical supplies at x=30 and x=70.
	h := segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")
	v1 := segBetween(t, c, geom.V(30, -50), geom.V(30, 50), "supply")
	v2 := segBetween(t, c, geom.V(70, -50), geom.V(70, 50), "supply")
	c.SetCrossingStyle(h.ID, v2.ID, CrossingStyle{Glyph: "hop"})

	j := c.ConvertToJunction(h.ID, v1.ID)
	if j == nil {
		t.Fatal("ConvertToJunction refused")
	}

	// The manual style against v2 must survive on whichever half of the
	// drain run now crosses it.
	found := false
	for _, sid := range c.SegmentIDs() {
		s := c.Segment(sid)
		if st, ok := s.Crossings[v2.ID]; ok {
			if !st.Manual || st.Glyph != "hop" {
				t.Errorf("style corrupted: %+v", st)
			}
			p, q := c.SegmentEnds(s)
			if _, crosses := geom.IntersectSegments(p, q, geom.V(70, -50), geom.V(70, 50)); !crosses {
				t.Error("style migrated to the half that does not cross")
			}
			found = true
		}
	}
	if !found {
		t.Error("manual crossing style lost in split")
	}
	if issues := c.Validate(); len(issues) != 0 {
		t.Errorf("validate: %v", issues)
	}
}
