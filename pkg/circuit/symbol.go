package circuit

import (
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"
)

// NewSymbol instantiates a symbol kind at the given pose, creating one port
// vertex per kind port. Returns nil for an unknown kind name.
func (c *Circuit) NewSymbol(kindName string, pos geom.Vec, rot geom.Rotation, scale geom.Vec) *SymbolInstance {
	kind := c.lib.Symbols[kindName]
	if kind == nil {
		return nil
	}
	sym := &SymbolInstance{
		ID:       SymbolID(c.allocID()),
		Kind:     kind,
		Pos:      pos,
		Rot:      rot,
		Scale:    scale,
		Attached: map[VertexID]struct{}{},
	}
	c.symbols[sym.ID] = sym
	for _, po := range kind.Ports {
		p := &Vertex{
			ID:     VertexID(c.allocID()),
			Kind:   KindPort,
			Edges:  map[SegmentID]VertexID{},
			Symbol: sym.ID,
			Port:   po.Name,
			Offset: po.Offset,
		}
		c.vertices[p.ID] = p
		sym.Ports = append(sym.Ports, p.ID)
	}
	c.refreshSymbolFrame(sym)
	return sym
}

// DeleteSymbol removes a symbol instance. Ports that still carry edges are
// converted into free junctions so their segments survive; bare ports are
// deleted. Attached junctions are released.
func (c *Circuit) DeleteSymbol(id SymbolID) {
	sym := c.symbols[id]
	if sym == nil {
		return
	}
	delete(c.symbols, id)
	c.Amassed.RemoveSymbol(id)
	for _, pid := range sym.Ports {
		p := c.vertices[pid]
		if p == nil {
			continue
		}
		if len(p.Edges) > 0 {
			p.Kind = KindJunction
			p.Symbol = 0
			p.Port = ""
			p.Offset = geom.Vec{}
			continue
		}
		c.deleteVertex(pid)
	}
	for vid := range sym.Attached {
		if v := c.vertices[vid]; v != nil && v.Host.Kind == HostSymbol && v.Host.Symbol == id {
			v.Host = HostRef{}
			c.reapJunction(v)
		}
	}
}

// SetSymbolPose moves, rotates, and scales a symbol in one step, then
// recomputes all port positions (and their incident segment axes).
func (c *Circuit) SetSymbolPose(id SymbolID, pos geom.Vec, rot geom.Rotation, scale geom.Vec) {
	sym := c.symbols[id]
	if sym == nil {
		return
	}
	sym.Pos = pos
	sym.Rot = rot
	sym.Scale = scale
	c.refreshSymbolFrame(sym)
}

// MoveSymbol translates a symbol, keeping rotation and scale.
func (c *Circuit) MoveSymbol(id SymbolID, pos geom.Vec) {
	sym := c.symbols[id]
	if sym == nil {
		return
	}
	c.SetSymbolPose(id, pos, sym.Rot, sym.Scale)
}

func (c *Circuit) refreshSymbolFrame(sym *SymbolInstance) {
	for i, pid := range sym.Ports {
		p := c.vertices[pid]
		if p == nil || i >= len(sym.Kind.Ports) {
			continue
		}
		c.MoveVertex(pid, sym.WorldPoint(p.Offset))
	}
}
