package circfile

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// FormatVersion is the snapshot format version this package reads and
// writes.
const FormatVersion = 1

// Load reconstructs a circuit from a snapshot. The reconstruction runs in
// passes because segments cannot exist before their endpoints and crossing
// metadata cannot exist before both its segments:
//
//  1. junctions and symbols (with their ports), so every vertex ID resolves;
//  2. segments, resolving endpoint IDs;
//  3. attachments, crossing styles, marked pairs, and the amassed set.
//
// Entities whose references no longer resolve (unknown line type, symbol
// kind, or ID) are logged and omitted; only malformed syntax fails the load.
func Load(r io.Reader, lib *circuit.Library) (*circuit.Circuit, error) {
	root, err := parse(r)
	if err != nil {
		return nil, err
	}
	if root.name != "circuit" {
		return nil, fmt.Errorf("not a circuit file: top-level (%s)", root.name)
	}
	if v, ok := root.childInt("version"); ok && v > FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", v)
	}

	c := circuit.New(lib)
	ld := &loader{
		c:        c,
		vertices: map[int]circuit.VertexID{},
		segments: map[int]circuit.SegmentID{},
		symbols:  map[int]circuit.SymbolID{},
	}
	ld.loadVertices(root)
	ld.loadSegments(root)
	ld.loadMetadata(root)
	return c, nil
}

// LoadFile reads a snapshot from disk.
func LoadFile(path string, lib *circuit.Library) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, lib)
}

type loader struct {
	c        *circuit.Circuit
	vertices map[int]circuit.VertexID
	segments map[int]circuit.SegmentID
	symbols  map[int]circuit.SymbolID
}

func (ld *loader) loadVertices(root *node) {
	for _, jn := range root.children("junction") {
		id, ok := jn.childInt("id")
		if !ok {
			log.Printf("circfile: junction without id, omitted")
			continue
		}
		x, y, ok := jn.childXY("at")
		if !ok {
			log.Printf("circfile: junction #%d without position, omitted", id)
			continue
		}
		j := ld.c.NewJunction(geom.V(x, y))
		if g, ok := jn.childString("glyph"); ok {
			j.Glyph = g
		}
		ld.vertices[id] = j.ID
	}

	for _, sn := range root.children("symbol") {
		id, ok := sn.childInt("id")
		if !ok {
			log.Printf("circfile: symbol without id, omitted")
			continue
		}
		kind, ok := sn.childString("kind")
		if !ok {
			log.Printf("circfile: symbol #%d without kind, omitted", id)
			continue
		}
		x, y, ok := sn.childXY("at")
		if !ok {
			log.Printf("circfile: symbol #%d without position, omitted", id)
			continue
		}
		rot := 0.0
		if r, ok := sn.childFloat("rot"); ok {
			rot = r
		}
		sx, sy := 1.0, 1.0
		if a, b, ok := sn.childXY("scale"); ok {
			sx, sy = a, b
		}
		sym := ld.c.NewSymbol(kind, geom.V(x, y), geom.RotationFromAngle(rot), geom.V(sx, sy))
		if sym == nil {
			log.Printf("circfile: symbol #%d has unknown kind %q, omitted", id, kind)
			continue
		}
		ld.symbols[id] = sym.ID

		for _, pn := range sn.children("port") {
			pid, ok := pn.childInt("id")
			if !ok {
				continue
			}
			name, _ := pn.childString("name")
			found := false
			for _, portID := range sym.Ports {
				if ld.c.Vertex(portID).Port == name {
					ld.vertices[pid] = portID
					found = true
					break
				}
			}
			if !found {
				log.Printf("circfile: symbol #%d has no port named %q", id, name)
			}
		}
	}
}

func (ld *loader) loadSegments(root *node) {
	for _, sn := range root.children("segment") {
		id, ok := sn.childInt("id")
		if !ok {
			log.Printf("circfile: segment without id, omitted")
			continue
		}
		typ, _ := sn.childString("type")
		if ld.c.LineType(typ) == nil {
			log.Printf("circfile: segment #%d has unknown line type %q, omitted", id, typ)
			continue
		}
		startFile, ok1 := sn.childInt("start")
		endFile, ok2 := sn.childInt("end")
		if !ok1 || !ok2 {
			log.Printf("circfile: segment #%d missing endpoints, omitted", id)
			continue
		}
		start, ok1 := ld.vertices[startFile]
		end, ok2 := ld.vertices[endFile]
		if !ok1 || !ok2 {
			log.Printf("circfile: segment #%d references missing vertex, omitted", id)
			continue
		}
		s := ld.c.NewSegmentBetween(start, end, typ)
		if s == nil {
			log.Printf("circfile: segment #%d is degenerate, omitted", id)
			continue
		}
		s.Frozen = sn.flag("frozen")
		ld.segments[id] = s.ID
	}
}

func (ld *loader) loadMetadata(root *node) {
	// Attachment hosts: junction (host segment N | symbol N), segment
	// (attach N) lists.
	for _, jn := range root.children("junction") {
		id, ok := jn.childInt("id")
		if !ok {
			continue
		}
		vid, ok := ld.vertices[id]
		if !ok {
			continue
		}
		hn := jn.child("host")
		if hn == nil || len(hn.args) < 2 {
			continue
		}
		kind, _ := hn.arg(0)
		ref, err := hn.intArg(1)
		if err != nil {
			continue
		}
		var host circuit.HostRef
		switch kind {
		case "segment":
			sid, ok := ld.segments[ref]
			if !ok {
				log.Printf("circfile: junction #%d host segment missing", id)
				continue
			}
			host = circuit.HostRef{Kind: circuit.HostSegment, Segment: sid}
		case "symbol":
			sid, ok := ld.symbols[ref]
			if !ok {
				log.Printf("circfile: junction #%d host symbol missing", id)
				continue
			}
			host = circuit.HostRef{Kind: circuit.HostSymbol, Symbol: sid}
		default:
			continue
		}
		if !ld.c.Attach(vid, host) {
			log.Printf("circfile: junction #%d attach refused", id)
		}
	}

	// Cross-segment crossing styles, sparse (other, glyph, flip) entries.
	for _, sn := range root.children("segment") {
		fileID, ok := sn.childInt("id")
		if !ok {
			continue
		}
		sid, ok := ld.segments[fileID]
		if !ok {
			continue
		}
		for _, xn := range sn.children("crossing") {
			otherFile, ok := xn.childInt("other")
			if !ok {
				continue
			}
			other, ok := ld.segments[otherFile]
			if !ok {
				log.Printf("circfile: segment #%d crossing partner missing, omitted", fileID)
				continue
			}
			glyph, _ := xn.childString("glyph")
			ld.c.SetCrossingStyle(sid, other, circuit.CrossingStyle{
				Glyph: glyph,
				Flip:  xn.flag("flip"),
			})
		}
	}

	for _, mn := range root.children("marked") {
		a, err1 := mn.intArg(0)
		b, err2 := mn.intArg(1)
		if err1 != nil || err2 != nil {
			continue
		}
		sa, ok1 := ld.segments[a]
		sb, ok2 := ld.segments[b]
		if !ok1 || !ok2 {
			log.Printf("circfile: marked crossing (%d %d) references missing segment", a, b)
			continue
		}
		ld.c.MarkCrossing(sa, sb)
	}

	if an := root.child("amassed"); an != nil {
		for _, en := range an.kids {
			switch en.name {
			case "vertex":
				if id, err := en.intArg(0); err == nil {
					if vid, ok := ld.vertices[id]; ok {
						ld.c.Amassed.Add(circuit.VertexRef(vid))
					} else {
						log.Printf("circfile: amassed vertex %d missing", id)
					}
				}
			case "segment":
				if id, err := en.intArg(0); err == nil {
					if sid, ok := ld.segments[id]; ok {
						ld.c.Amassed.Add(circuit.SegmentRef(sid))
					} else {
						log.Printf("circfile: amassed segment %d missing", id)
					}
				}
			case "symbol":
				if id, err := en.intArg(0); err == nil {
					if sid, ok := ld.symbols[id]; ok {
						ld.c.Amassed.Add(circuit.SymbolRef(sid))
					} else {
						log.Printf("circfile: amassed symbol %d missing", id)
					}
				}
			case "crossing":
				a, err1 := en.intArg(0)
				b, err2 := en.intArg(1)
				if err1 != nil || err2 != nil {
					continue
				}
				sa, ok1 := ld.segments[a]
				sb, ok2 := ld.segments[b]
				if ok1 && ok2 {
					ld.c.Amassed.Crossings[circuit.MakeSegPair(sa, sb)] = struct{}{}
				} else {
					log.Printf("circfile: amassed crossing (%d %d) missing", a, b)
				}
			}
		}
	}
}

// Save writes a circuit snapshot in canonical order: junctions, symbols,
// segments, marked pairs, then the amassed set. Output for an unchanged
// circuit is byte-stable.
func Save(w io.Writer, c *circuit.Circuit) error {
	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("(circuit\n")
	p("  (version %d)\n", FormatVersion)

	ports := map[circuit.VertexID]bool{}
	for _, id := range c.SymbolIDs() {
		for _, pid := range c.Symbol(id).Ports {
			ports[pid] = true
		}
	}

	for _, id := range c.VertexIDs() {
		v := c.Vertex(id)
		if v.Kind != circuit.KindJunction || ports[id] {
			continue
		}
		p("  (junction (id %d) (at %s %s)", id, num(v.Pos.X), num(v.Pos.Y))
		if v.Glyph != "" {
			p(" (glyph %q)", v.Glyph)
		}
		switch v.Host.Kind {
		case circuit.HostSegment:
			p(" (host segment %d)", v.Host.Segment)
		case circuit.HostSymbol:
			p(" (host symbol %d)", v.Host.Symbol)
		}
		p(")\n")
	}

	for _, id := range c.SymbolIDs() {
		sym := c.Symbol(id)
		p("  (symbol (id %d) (kind %q) (at %s %s) (rot %s) (scale %s %s)",
			id, sym.Kind.Name, num(sym.Pos.X), num(sym.Pos.Y),
			num(sym.Rot.Angle()), num(sym.Scale.X), num(sym.Scale.Y))
		for _, pid := range sym.Ports {
			port := c.Vertex(pid)
			p("\n    (port (id %d) (name %q))", pid, port.Port)
		}
		p(")\n")
	}

	for _, id := range c.SegmentIDs() {
		s := c.Segment(id)
		p("  (segment (id %d) (type %q) (start %d) (end %d)", id, s.Type, s.Start, s.End)
		if s.Frozen {
			p(" (frozen)")
		}
		// Each manual crossing style is written once, on the lower ID.
		others := make([]circuit.SegmentID, 0, len(s.Crossings))
		for other := range s.Crossings {
			if other > id {
				others = append(others, other)
			}
		}
		sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
		for _, other := range others {
			st := s.Crossings[other]
			p("\n    (crossing (other %d) (glyph %q)", other, st.Glyph)
			if st.Flip {
				p(" (flip)")
			}
			p(")")
		}
		p(")\n")
	}

	for _, pair := range c.MarkedPairs() {
		p("  (marked %d %d)\n", pair.A, pair.B)
	}

	if !c.Amassed.Empty() {
		p("  (amassed")
		for _, id := range sortedVertexIDs(c.Amassed.Vertices) {
			p(" (vertex %d)", id)
		}
		for _, id := range sortedSegmentIDs(c.Amassed.Segments) {
			p(" (segment %d)", id)
		}
		for _, id := range sortedSymbolIDs(c.Amassed.Symbols) {
			p(" (symbol %d)", id)
		}
		for _, pair := range sortedPairs(c.Amassed.Crossings) {
			p(" (crossing %d %d)", pair.A, pair.B)
		}
		p(")\n")
	}
	p(")\n")
	return err
}

// SaveFile writes a snapshot to disk.
func SaveFile(path string, c *circuit.Circuit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// num formats a coordinate compactly.
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}

func sortedVertexIDs(m map[circuit.VertexID]struct{}) []circuit.VertexID {
	out := make([]circuit.VertexID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedSegmentIDs(m map[circuit.SegmentID]struct{}) []circuit.SegmentID {
	out := make([]circuit.SegmentID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedSymbolIDs(m map[circuit.SymbolID]struct{}) []circuit.SymbolID {
	out := make([]circuit.SymbolID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedPairs(m map[circuit.SegPair]struct{}) []circuit.SegPair {
	out := make([]circuit.SegPair, 0, len(m))
	for pair := range m {
		out = append(out, pair)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
