package circuit

import "github.com/OpenTraceLab/OpenTraceCircuit/pkg/geom"

// StandardLibrary returns the stock lookup tables used when no resource
// pack is supplied: plain wires, buses, and a handful of generic two-port
// symbol kinds. Real deployments replace this with loader-provided tables.
func StandardLibrary() *Library {
	wireMeets := map[string]MeetingGlyphs{
		"wire": {
			Crossing: "wire-hop",
			L:        "wire-elbow",
			T:        "wire-dot",
			X:        "wire-dot",
			Attaches: true,
		},
		"bus": {Crossing: ""},
	}
	busMeets := map[string]MeetingGlyphs{
		"bus": {
			Crossing: "bus-hop",
			L:        "bus-elbow",
			T:        "bus-tap",
			X:        "bus-tap",
			Attaches: true,
		},
		"wire": {Crossing: ""},
	}
	return &Library{
		LineTypes: map[string]*LineType{
			"wire": {
				Name:      "wire",
				Color:     "#1a7f37",
				Thickness: 1.5,
				Meeting:   wireMeets,
			},
			"bus": {
				Name:      "bus",
				Color:     "#0550ae",
				Thickness: 3,
				Meeting:   busMeets,
			},
			"guide": {
				Name:      "guide",
				Color:     "#8c959f",
				Thickness: 1,
				Dash:      []float64{4, 4},
			},
		},
		Symbols: map[string]*SymbolKind{
			"resistor": {
				Name:      "resistor",
				Bounds:    geom.R(-20, -8, 20, 8),
				Collision: geom.R(-20, -8, 20, 8),
				Ports: []PortOffset{
					{Name: "a", Offset: geom.V(-20, 0)},
					{Name: "b", Offset: geom.V(20, 0)},
				},
			},
			"capacitor": {
				Name:      "capacitor",
				Bounds:    geom.R(-12, -10, 12, 10),
				Collision: geom.R(-12, -10, 12, 10),
				Ports: []PortOffset{
					{Name: "a", Offset: geom.V(-12, 0)},
					{Name: "b", Offset: geom.V(12, 0)},
				},
			},
			"ground": {
				Name:      "ground",
				Bounds:    geom.R(-10, 0, 10, 14),
				Collision: geom.R(-10, 0, 10, 14),
				Ports: []PortOffset{
					{Name: "gnd", Offset: geom.V(0, 0)},
				},
			},
		},
	}
}
