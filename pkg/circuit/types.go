// Package circuit implements the schematic graph: junctions, ports,
// segments, symbol instances, their adjacency and attachment relationships,
// and the crossing metadata describing how segments render where they meet.
//
// All structural rewrites funnel through ReplaceSegment and the
// ConvertToCrossing / ConvertToJunction pair, which migrate crossing
// styles, attachments, and frozen flags onto their replacements.
package circuit

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// VertexID identifies a junction or port. IDs are assigned at creation and
// never reused within a circuit.
type VertexID int

// SegmentID identifies a segment.
type SegmentID int

// SymbolID identifies a symbol instance.
type SymbolID int

// VertexKind tags the two vertex variants.
type VertexKind uint8

const (
	// KindJunction is a free-standing graph node.
	KindJunction VertexKind = iota
	// KindPort is a vertex fixed inside a symbol instance's local frame.
	KindPort
)

// HostKind tags the attachment host variants.
type HostKind uint8

const (
	HostNone HostKind = iota
	HostSegment
	HostSymbol
)

// HostRef names the element a junction is attached to: a segment or symbol
// the junction logically rides on without splitting it.
type HostRef struct {
	Kind    HostKind
	Segment SegmentID
	Symbol  SymbolID
}

// Vertex is a graph node. Kind selects which variant fields are meaningful:
// junctions use Glyph and Host, ports use Symbol, Port and Offset. Pos is
// mutated in place so the vertex keeps one identity across a drag.
type Vertex struct {
	ID   VertexID
	Kind VertexKind
	Pos  geom.Vec

	// Edges maps each incident segment to the far endpoint, the symmetric
	// edge relation. Maintained by the circuit, never written directly.
	Edges map[SegmentID]VertexID

	// Junction fields.
	Glyph string // glyph override; empty means automatic
	Host  HostRef

	// Port fields.
	Symbol SymbolID
	Port   string   // port name within the symbol kind
	Offset geom.Vec // local-frame offset
}

// IsJunction reports whether the vertex is a free junction.
func (v *Vertex) IsJunction() bool { return v.Kind == KindJunction }

// Degree returns the number of incident segments.
func (v *Vertex) Degree() int { return len(v.Edges) }

// CrossingStyle records how a pair of segments renders where they meet.
// Manual styles are user overrides; automatic styles are recomputed from the
// line-type meeting tables and never stored.
type CrossingStyle struct {
	Glyph  string
	Manual bool
	Flip   bool // left/right facing of the glyph
}

// Segment is a graph edge between two vertices. Axis is interned; it always
// equals the canonical direction of End-Start while the segment has nonzero
// length.
type Segment struct {
	ID    SegmentID
	Start VertexID
	End   VertexID
	Axis  *geom.Axis
	Type  string // line-type name

	// Frozen forbids length changes during slide/warp propagation.
	Frozen bool

	// Attached holds junctions that plug into the segment's interior
	// without splitting it.
	Attached map[VertexID]struct{}

	// Crossings holds manual style overrides keyed by the other segment.
	// The same style is mirrored on the partner's map.
	Crossings map[SegmentID]CrossingStyle
}

// SegPair is a normalized (A < B) segment pair, the identity of a crossing.
type SegPair struct {
	A, B SegmentID
}

// MakeSegPair normalizes the pair ordering.
func MakeSegPair(a, b SegmentID) SegPair {
	if b < a {
		a, b = b, a
	}
	return SegPair{A: a, B: b}
}

// Other returns the pair member that is not id.
func (p SegPair) Other(id SegmentID) SegmentID {
	if p.A == id {
		return p.B
	}
	return p.A
}

// Crossing is an ephemeral non-adjacent intersection of two segments,
// recomputed per frame from current geometry.
type Crossing struct {
	Pair SegPair
	At   geom.Vec
}

// PortOffset names a port and its offset in the symbol kind's local frame.
type PortOffset struct {
	Name   string
	Offset geom.Vec
}

// SymbolKind is the immutable template a symbol instance is stamped from.
// The SVG template itself is owned by the resource loader; the kind carries
// only geometry.
type SymbolKind struct {
	Name      string
	Bounds    geom.Rect // local-frame bounding box
	Collision geom.Rect // local-frame collision box
	Ports     []PortOffset
}

// SymbolInstance is an oriented rectangle instantiated from a SymbolKind.
// It owns its ports; moving the frame recomputes every port position.
type SymbolInstance struct {
	ID    SymbolID
	Kind  *SymbolKind
	Pos   geom.Vec
	Rot   geom.Rotation
	Scale geom.Vec // non-uniform

	// Ports holds the owned port vertices, index-aligned with Kind.Ports.
	Ports []VertexID

	// Attached holds junctions riding on the instance.
	Attached map[VertexID]struct{}
}

// WorldPoint maps a local-frame point into world coordinates.
func (s *SymbolInstance) WorldPoint(local geom.Vec) geom.Vec {
	scaled := geom.V(local.X*s.Scale.X, local.Y*s.Scale.Y)
	p := s.Rot.Apply(scaled)
	return geom.V(p.X+s.Pos.X, p.Y+s.Pos.Y)
}

// CollisionBounds returns the world-frame bounding rectangle of the
// collision box.
func (s *SymbolInstance) CollisionBounds() geom.Rect {
	c := s.Kind.Collision.Corners()
	out := geom.RectFromPoints(s.WorldPoint(c[0]), s.WorldPoint(c[1]))
	out = out.Union(geom.RectFromPoints(s.WorldPoint(c[2]), s.WorldPoint(c[3])))
	return out
}

// MeetingGlyphs names the glyphs a line type requests when meeting another
// line type, per meeting kind. Empty entries request no glyph.
type MeetingGlyphs struct {
	Crossing string // two segments crossing with no junction
	L        string // two-edge corner junction
	T        string // three-edge junction
	X        string // four-edge junction
	Attaches bool   // whether junctions of the other type may attach
}

// LineType is the immutable record describing one line category, provided
// by the resource loader.
type LineType struct {
	Name      string
	Color     string // SVG color
	Thickness float64
	Dash      []float64
	Meeting   map[string]MeetingGlyphs // keyed by the other type's name
}

// Library is the immutable lookup table set handed to a circuit: line types
// by name and symbol kinds by name.
type Library struct {
	LineTypes map[string]*LineType
	Symbols   map[string]*SymbolKind
}

// ElemKind tags the element reference variants.
type ElemKind uint8

const (
	ElemNone ElemKind = iota
	ElemVertex
	ElemSegment
	ElemSymbol
)

// ElemRef is a tagged reference to any circuit element, used by hit testing,
// selection, and the slide propagation.
type ElemRef struct {
	Kind    ElemKind
	Vertex  VertexID
	Segment SegmentID
	Symbol  SymbolID
}

// VertexRef builds a vertex reference.
func VertexRef(id VertexID) ElemRef { return ElemRef{Kind: ElemVertex, Vertex: id} }

// SegmentRef builds a segment reference.
func SegmentRef(id SegmentID) ElemRef { return ElemRef{Kind: ElemSegment, Segment: id} }

// SymbolRef builds a symbol reference.
func SymbolRef(id SymbolID) ElemRef { return ElemRef{Kind: ElemSymbol, Symbol: id} }
