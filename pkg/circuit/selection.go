package circuit

// Selection is the persisted "amassed" membership set: vertices, segments,
// and symbols by ID, plus marked crossings by their segment-pair identity.
type Selection struct {
	Vertices  map[VertexID]struct{}
	Segments  map[SegmentID]struct{}
	Symbols   map[SymbolID]struct{}
	Crossings map[SegPair]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{
		Vertices:  map[VertexID]struct{}{},
		Segments:  map[SegmentID]struct{}{},
		Symbols:   map[SymbolID]struct{}{},
		Crossings: map[SegPair]struct{}{},
	}
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool {
	return len(s.Vertices) == 0 && len(s.Segments) == 0 &&
		len(s.Symbols) == 0 && len(s.Crossings) == 0
}

// Clear removes all members.
func (s *Selection) Clear() {
	*s = NewSelection()
}

// Add inserts an element reference.
func (s *Selection) Add(ref ElemRef) {
	switch ref.Kind {
	case ElemVertex:
		s.Vertices[ref.Vertex] = struct{}{}
	case ElemSegment:
		s.Segments[ref.Segment] = struct{}{}
	case ElemSymbol:
		s.Symbols[ref.Symbol] = struct{}{}
	}
}

// Remove drops an element reference.
func (s *Selection) Remove(ref ElemRef) {
	switch ref.Kind {
	case ElemVertex:
		delete(s.Vertices, ref.Vertex)
	case ElemSegment:
		delete(s.Segments, ref.Segment)
	case ElemSymbol:
		delete(s.Symbols, ref.Symbol)
	}
}

// Has reports membership of an element reference.
func (s *Selection) Has(ref ElemRef) bool {
	switch ref.Kind {
	case ElemVertex:
		_, ok := s.Vertices[ref.Vertex]
		return ok
	case ElemSegment:
		_, ok := s.Segments[ref.Segment]
		return ok
	case ElemSymbol:
		_, ok := s.Symbols[ref.Symbol]
		return ok
	}
	return false
}

// RemoveVertex drops a vertex member, used when the vertex is deleted.
func (s *Selection) RemoveVertex(id VertexID) { delete(s.Vertices, id) }

// RemoveSegment drops a segment member and any crossing pairs naming it.
func (s *Selection) RemoveSegment(id SegmentID) {
	delete(s.Segments, id)
	for pair := range s.Crossings {
		if pair.A == id || pair.B == id {
			delete(s.Crossings, pair)
		}
	}
}

// RemoveSymbol drops a symbol member.
func (s *Selection) RemoveSymbol(id SymbolID) { delete(s.Symbols, id) }
