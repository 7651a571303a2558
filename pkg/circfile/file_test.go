package circfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

func testLibrary() *circuit.Library {
	return &circuit.Library{
		LineTypes: map[string]*circuit.LineType{
			"drain":  {Name: "drain", Meeting: map[string]circuit.MeetingGlyphs{"drain": {Crossing: "bridge", Attaches: true}}},
			"supply": {Name: "supply"},
		},
		Symbols: map[string]*circuit.SymbolKind{
			"valve": {
				Name:      "valve",
				Bounds:    geom.R(-10, -10, 10, 10),
				Collision: geom.R(-10, -10, 10, 10),
				Ports:     []circuit.PortOffset{{Name: "a", Offset: geom.V(-10, 0)}, {Name: "b", Offset: geom.V(10, 0)}},
			},
		},
	}
}

const sampleCircuit = `
(circuit
  (version 1)
  # two junctions joined by a frozen drain run, a valve, and a crossing
  (junction (id 1) (at 0 0))
  (junction (id 2) (at 100 0) (glyph "dot"))
  (junction (id 3) (at 50 -50))
  (junction (id 4) (at 50 50))
  (junction (id 9) (at 80 0) (host segment 5))
  (symbol (id 6) (kind "valve") (at 200 0) (rot 0) (scale 1 1)
    (port (id 7) (name "a"))
    (port (id 8) (name "b")))
  (segment (id 5) (type "drain") (start 1) (end 2) (frozen)
    (crossing (other 10) (glyph "hop") (flip)))
  (segment (id 10) (type "drain") (start 3) (end 4))
  (segment (id 11) (type "drain") (start 2) (end 7))
  (marked 5 10)
  (amassed (vertex 1) (segment 5) (symbol 6) (crossing 5 10))
)
`

func TestLoadSnapshot(t *testing.T) {
	c, err := Load(strings.NewReader(sampleCircuit), testLibrary())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := len(c.SegmentIDs()); got != 3 {
		t.Fatalf("segment count = %d, want 3", got)
	}
	if got := len(c.SymbolIDs()); got != 1 {
		t.Fatalf("symbol count = %d, want 1", got)
	}

	// Junction glyph and frozen flag survive.
	var frozen *circuit.Segment
	for _, id := range c.SegmentIDs() {
		if s := c.Segment(id); s.Frozen {
			frozen = s
		}
	}
	if frozen == nil {
		t.Fatal("frozen segment lost")
	}
	if got := c.SegmentLen(frozen); got != 100 {
		t.Errorf("frozen segment length = %v, want 100", got)
	}
	if g := c.Vertex(frozen.End).Glyph; g != "dot" {
		t.Errorf("junction glyph = %q, want dot", g)
	}

	// The crossing style is mirrored and the pair marked.
	if len(frozen.Crossings) != 1 {
		t.Fatalf("crossing styles = %d, want 1", len(frozen.Crossings))
	}
	for other, st := range frozen.Crossings {
		if !st.Manual || st.Glyph != "hop" || !st.Flip {
			t.Errorf("crossing style = %+v", st)
		}
		if !c.IsMarked(frozen.ID, other) {
			t.Error("marked pair lost")
		}
	}

	// The attachment rider is hosted on the frozen segment.
	hosted := false
	for _, id := range c.VertexIDs() {
		v := c.Vertex(id)
		if v.Host.Kind == circuit.HostSegment && v.Host.Segment == frozen.ID {
			hosted = true
		}
	}
	if !hosted {
		t.Error("host attachment lost")
	}

	// The segment into the valve connects to the named port.
	sym := c.Symbol(c.SymbolIDs()[0])
	portA := c.Vertex(sym.Ports[0])
	if portA.Degree() != 1 {
		t.Errorf("port a degree = %d, want 1", portA.Degree())
	}

	if c.Amassed.Empty() {
		t.Error("amassed set lost")
	}
	if issues := c.Validate(); len(issues) != 0 {
		t.Errorf("validate after load: %v", issues)
	}
}

func TestLoadOmitsBrokenReferences(t *testing.T) {
	broken := `
(circuit
  (version 1)
  (junction (id 1) (at 0 0))
  (junction (id 2) (at 100 0))
  (symbol (id 3) (kind "no-such-kind") (at 0 0))
  (segment (id 4) (type "no-such-type") (start 1) (end 2))
  (segment (id 5) (type "drain") (start 1) (end 99))
  (segment (id 6) (type "drain") (start 1) (end 2))
  (marked 4 6)
)
`
	c, err := Load(strings.NewReader(broken), testLibrary())
	if err != nil {
		t.Fatalf("Load failed on recoverable problems: %v", err)
	}
	if got := len(c.SegmentIDs()); got != 1 {
		t.Errorf("segment count = %d, want only the resolvable one", got)
	}
	if got := len(c.SymbolIDs()); got != 0 {
		t.Errorf("symbol count = %d, want 0", got)
	}
	if got := len(c.MarkedPairs()); got != 0 {
		t.Errorf("marked pairs = %d, want 0", got)
	}
}

func TestLoadRejectsMalformedSyntax(t *testing.T) {
	if _, err := Load(strings.NewReader("(circuit (version 1)"), testLibrary()); err == nil {
		t.Error("unclosed list accepted")
	}
	if _, err := Load(strings.NewReader("(schematic)"), testLibrary()); err == nil {
		t.Error("wrong top-level list accepted")
	}
}

func TestSaveLoadStable(t *testing.T) {
	lib := testLibrary()
	c, err := Load(strings.NewReader(sampleCircuit), lib)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var first bytes.Buffer
	if err := Save(&first, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	c2, err := Load(bytes.NewReader(first.Bytes()), lib)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	var second bytes.Buffer
	if err := Save(&second, c2); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("save/load/save is not stable:\n--- first\n%s--- second\n%s", first.String(), second.String())
	}
}
