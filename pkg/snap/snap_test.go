package snap

import (
	"math"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

func testCircuit() *circuit.Circuit {
	lib := &circuit.Library{
		LineTypes: map[string]*circuit.LineType{
			"drain": {Name: "drain"},
		},
		Symbols: map[string]*circuit.SymbolKind{},
	}
	return circuit.New(lib)
}

func segBetween(t *testing.T, c *circuit.Circuit, p, q geom.Vec) *circuit.Segment {
	t.Helper()
	a := c.NewJunction(p)
	b := c.NewJunction(q)
	s := c.NewSegmentBetween(a.ID, b.ID, "drain")
	if s == nil {
		t.Fatalf("segment %v-%v not created", p, q)
	}
	return s
}

func TestEaseCurve(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.Ease(0); got != 0 {
		t.Errorf("Ease(0) = %v, want 0", got)
	}
	if got := cfg.Ease(7); got != 7 {
		t.Errorf("Ease(7) = %v, want hard snap 7", got)
	}
	if got := cfg.Ease(cfg.SnapRadius); got != cfg.SnapJump {
		t.Errorf("Ease at snap radius = %v, want %v", got, cfg.SnapJump)
	}
	// Quadratic tail: halfway through the ease band, a quarter of the jump.
	mid := (cfg.SnapRadius + cfg.EaseRadius) / 2
	if got, want := cfg.Ease(mid), cfg.SnapJump/4; math.Abs(got-want) > 1e-12 {
		t.Errorf("Ease(%v) = %v, want %v", mid, got, want)
	}
	if got := cfg.Ease(cfg.EaseRadius); got != 0 {
		t.Errorf("Ease at ease radius = %v, want 0", got)
	}
	if got := cfg.Ease(1000); got != 0 {
		t.Errorf("Ease far away = %v, want 0", got)
	}
	if got := cfg.Ease(-7); got != 7 {
		t.Errorf("Ease(-7) = %v, want 7", got)
	}
}

func TestNearestVertex(t *testing.T) {
	c := testCircuit()
	a := c.NewJunction(geom.V(0, 0))
	b := c.NewJunction(geom.V(8, 0))

	v, ok := NearestVertex(c, geom.V(5, 0), 10, nil)
	if !ok || v.ID != b.ID {
		t.Fatalf("nearest = %v, want junction at (8,0)", v)
	}
	v, ok = NearestVertex(c, geom.V(5, 0), 10, func(cand *circuit.Vertex) bool {
		return cand.ID == b.ID
	})
	if !ok || v.ID != a.ID {
		t.Fatalf("nearest with reject = %v, want junction at (0,0)", v)
	}
	if _, ok := NearestVertex(c, geom.V(100, 100), 10, nil); ok {
		t.Error("vertex found outside radius")
	}
}

func TestToPoint(t *testing.T) {
	cfg := DefaultConfig()
	target := geom.V(100, 0)

	got, ok := cfg.ToPoint(geom.V(93, 0), target)
	if !ok || !geom.AlmostEqual(got, target, 1e-9) {
		t.Errorf("hard snap gave %v", got)
	}
	// Mid-band pull: d=25 eases by 2.5 toward the target.
	got, ok = cfg.ToPoint(geom.V(75, 0), target)
	if !ok || math.Abs(got.X-77.5) > 1e-9 {
		t.Errorf("eased pull gave %v, want x=77.5", got)
	}
	if _, ok := cfg.ToPoint(geom.V(0, 0), target); ok {
		t.Error("out-of-range target had effect")
	}
}

func TestToLine(t *testing.T) {
	cfg := DefaultConfig()
	ln, _ := geom.LineThrough(geom.V(0, 0), geom.V(1, 0))

	got, ok := cfg.ToLine(geom.V(50, 6), ln)
	if !ok || math.Abs(got.Y) > 1e-9 || got.X != 50 {
		t.Errorf("hard snap onto line gave %v", got)
	}
	got, ok = cfg.ToLine(geom.V(50, -25), ln)
	if !ok || math.Abs(got.Y+22.5) > 1e-9 {
		t.Errorf("eased pull gave %v, want y=-22.5", got)
	}
	if _, ok := cfg.ToLine(geom.V(50, 80), ln); ok {
		t.Error("far line had effect")
	}
}

func TestNearestDir(t *testing.T) {
	cands := []geom.Vec{geom.V(1, 0), geom.V(0, -1)}

	dir, ok := NearestDir(geom.V(3, 40), cands)
	if !ok {
		t.Fatal("no direction chosen")
	}
	// Mostly-vertical drag picks the vertical candidate, re-oriented to
	// face the drag.
	if dir.X != 0 || dir.Y != 1 {
		t.Errorf("dir = %v, want (0,1)", dir)
	}
	if _, ok := NearestDir(geom.Vec{}, cands); ok {
		t.Error("zero drag chose a direction")
	}
}

func TestAxisChoices(t *testing.T) {
	c := testCircuit()
	s := segBetween(t, c, geom.V(0, 0), geom.V(30, 10))
	start := c.Vertex(s.Start)

	dirs := AxisChoices(c, start, true)
	if len(dirs) != 5 {
		t.Fatalf("got %d candidate axes, want 5 (2 primary + 2 diagonal + 1 incident)", len(dirs))
	}
	dirs = AxisChoices(c, nil, false)
	if len(dirs) != 2 {
		t.Errorf("got %d candidate axes, want the 2 primaries", len(dirs))
	}
}

func TestToSegmentsAlong(t *testing.T) {
	cfg := DefaultConfig()
	c := testCircuit()
	segBetween(t, c, geom.V(50, -50), geom.V(50, 50))

	ray, _ := geom.LineThrough(geom.V(0, 0), geom.V(1, 0))
	got, ok := cfg.ToSegmentsAlong(c, ray, geom.V(47, 0), nil)
	if !ok || math.Abs(got.X-50) > 1e-9 {
		t.Errorf("crossing snap gave %v, want x=50", got)
	}

	// A crossing inside the endpoint buffer of the target segment is not
	// a snap candidate.
	c2 := testCircuit()
	segBetween(t, c2, geom.V(80, -3), geom.V(80, 50))
	if _, ok := cfg.ToSegmentsAlong(c2, ray, geom.V(78, 0), nil); ok {
		t.Error("snapped inside the endpoint buffer")
	}
}

func TestToGap(t *testing.T) {
	cfg := DefaultConfig()
	c := testCircuit()
	segBetween(t, c, geom.V(100, -10), geom.V(100, 10))

	got, ok := cfg.ToGap(c, geom.V(1, 0), geom.V(75, 0), nil)
	if !ok || math.Abs(got.X-70) > 1e-9 {
		t.Errorf("gap snap gave %v, want x=70 (one gap short of the obstacle)", got)
	}

	// No orthogonal overlap, no effect.
	if _, ok := cfg.ToGap(c, geom.V(1, 0), geom.V(75, 40), nil); ok {
		t.Error("gap snap fired without orthogonal overlap")
	}
}
