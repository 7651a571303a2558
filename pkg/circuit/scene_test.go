package circuit

import (
	"reflect"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

func TestDrainCrossingGlyph(t *testing.T) {
	c := New(testLibrary())
	h := segBetween(t, c, geom.V(0, 50), geom.V(100, 50), "drain")
	segBetween(t, c, geom.V(50, 0), geom.V(50, 100), "drain")

	scene := BuildScene(c)
	var glyphs []GlyphPlacement
	for _, g := range scene.Glyphs {
		if g.Name == "drain-bridge" {
			glyphs = append(glyphs, g)
		}
	}
	if len(glyphs) != 1 {
		t.Fatalf("drain-bridge glyph count = %d, want 1", len(glyphs))
	}
	g := glyphs[0]
	if !geom.AlmostEqual(g.At, geom.V(50, 50), 1e-9) {
		t.Errorf("glyph at %v, want (50,50)", g.At)
	}
	// The horizontal segment owns the glyph facing.
	if !geom.AlmostEqual(g.Dir, geom.V(1, 0), 1e-9) {
		t.Errorf("glyph faces %v, want the horizontal axis", g.Dir)
	}

	// The owning segment is sliced around the splice; the other runs whole.
	for _, sv := range scene.Segments {
		switch sv.ID {
		case h.ID:
			if len(sv.Sections) != 2 {
				t.Errorf("owner drawn in %d sections, want 2", len(sv.Sections))
			}
		default:
			if len(sv.Sections) != 1 {
				t.Errorf("non-owner drawn in %d sections, want 1", len(sv.Sections))
			}
		}
	}
}

func TestConflictingCrossingGlyphDraws(t *testing.T) {
	c := New(testLibrary())
	// drain says "iso-cross" against supply and supply agrees, so the pair
	// resolves; then a manual suppression silences it.
	h := segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")
	v := segBetween(t, c, geom.V(50, -50), geom.V(50, 50), "supply")

	scene := BuildScene(c)
	found := false
	for _, g := range scene.Glyphs {
		if g.Name == "iso-cross" {
			found = true
		}
	}
	if !found {
		t.Error("agreeing two-sided crossing glyph not placed")
	}

	c.SetCrossingStyle(h.ID, v.ID, CrossingStyle{Glyph: ""})
	scene = BuildScene(c)
	for _, g := range scene.Glyphs {
		if g.Name == "iso-cross" {
			t.Error("manually suppressed glyph still drawn")
		}
	}
}

func TestConflictingSidesDrawNothing(t *testing.T) {
	lib := testLibrary()
	// Make the two sides request different crossing glyphs.
	lib.LineTypes["supply"].Meeting["drain"] = MeetingGlyphs{Crossing: "supply-wins"}
	c := New(lib)
	segBetween(t, c, geom.V(0, 0), geom.V(100, 0), "drain")
	segBetween(t, c, geom.V(50, -50), geom.V(50, 50), "supply")

	scene := BuildScene(c)
	for _, g := range scene.Glyphs {
		if g.Name == "iso-cross" || g.Name == "supply-wins" {
			t.Errorf("conflicting meeting drew glyph %q", g.Name)
		}
	}
}

func TestVertexGlyphKinds(t *testing.T) {
	c := New(testLibrary())
	// L: corner of two drains.
	corner := c.NewJunction(geom.V(0, 0))
	e1 := c.NewJunction(geom.V(50, 0))
	e2 := c.NewJunction(geom.V(0, 50))
	c.NewSegmentBetween(corner.ID, e1.ID, "drain")
	c.NewSegmentBetween(corner.ID, e2.ID, "drain")

	// T: three drains.
	tee := c.NewJunction(geom.V(200, 0))
	for _, p := range []geom.Vec{{X: 150}, {X: 250}, {X: 200, Y: 50}} {
		far := c.NewJunction(p)
		c.NewSegmentBetween(tee.ID, far.ID, "drain")
	}

	scene := BuildScene(c)
	var names []string
	for _, g := range scene.Glyphs {
		names = append(names, g.Name)
	}
	want := []string{"drain-elbow", "drain-tee"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("glyphs = %v, want %v", names, want)
	}
}

func TestSceneDeterministic(t *testing.T) {
	c := New(testLibrary())
	segBetween(t, c, geom.V(0, 50), geom.V(100, 50), "drain")
	segBetween(t, c, geom.V(50, 0), geom.V(50, 100), "drain")
	c.NewSymbol("pump", geom.V(200, 200), geom.IdentityRotation, geom.V(1, 1))

	a := BuildScene(c)
	b := BuildScene(c)
	if !reflect.DeepEqual(a, b) {
		t.Error("two derivations of an unchanged circuit differ")
	}
}
