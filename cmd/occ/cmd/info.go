package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circfile"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <snapshot_file> [element_id]",
	Short: "Show snapshot information",
	Long: `Display information about a circuit snapshot file.

Without element_id: shows the snapshot summary
With element_id: shows details for that vertex, segment, or symbol`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	c, err := circfile.LoadFile(filename, circuit.StandardLibrary())
	if err != nil {
		return fmt.Errorf("error loading snapshot: %w", err)
	}

	if len(args) >= 2 {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("element id must be an integer: %w", err)
		}
		return showElementDetails(c, id)
	}

	showSummary(c, filename)
	return nil
}

func showSummary(c *circuit.Circuit, filename string) {
	fmt.Printf("Snapshot: %s\n", filename)
	fmt.Println()

	junctions, ports, frozen := 0, 0, 0
	for _, id := range c.VertexIDs() {
		if c.Vertex(id).Kind == circuit.KindPort {
			ports++
		} else {
			junctions++
		}
	}
	for _, id := range c.SegmentIDs() {
		if c.Segment(id).Frozen {
			frozen++
		}
	}

	fmt.Println("Statistics:")
	fmt.Printf("  Junctions: %d\n", junctions)
	fmt.Printf("  Ports: %d\n", ports)
	fmt.Printf("  Segments: %d (%d frozen)\n", len(c.SegmentIDs()), frozen)
	fmt.Printf("  Symbols: %d\n", len(c.SymbolIDs()))
	fmt.Printf("  Crossings: %d\n", len(c.Crossings()))
	fmt.Printf("  Marked crossings: %d\n", len(c.MarkedPairs()))
	fmt.Println()

	// Segment count per line type
	byType := make(map[string]int)
	for _, id := range c.SegmentIDs() {
		byType[c.Segment(id).Type]++
	}
	if len(byType) > 0 {
		fmt.Println("Line types:")
		var names []string
		for n := range byType {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("  %s: %d\n", n, byType[n])
		}
		fmt.Println()
	}

	// Symbol instances grouped by kind
	byKind := make(map[string][]string)
	for _, id := range c.SymbolIDs() {
		sym := c.Symbol(id)
		byKind[sym.Kind.Name] = append(byKind[sym.Kind.Name], fmt.Sprintf("#%d", id))
	}
	if len(byKind) > 0 {
		fmt.Println("Symbols:")
		var kinds []string
		for k := range byKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %s: %s\n", k, strings.Join(byKind[k], ", "))
		}
		fmt.Println()
	}

	if b, ok := c.Bounds(); ok {
		fmt.Printf("Bounds: (%.1f, %.1f) to (%.1f, %.1f)\n", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}

	if verbose {
		fmt.Println()
		fmt.Println("Elements:")
		for _, id := range c.VertexIDs() {
			fmt.Printf("  %s\n", c.Describe(circuit.VertexRef(id)))
		}
		for _, id := range c.SegmentIDs() {
			fmt.Printf("  %s\n", c.Describe(circuit.SegmentRef(id)))
		}
		for _, id := range c.SymbolIDs() {
			fmt.Printf("  %s\n", c.Describe(circuit.SymbolRef(id)))
		}
	}
}

func showElementDetails(c *circuit.Circuit, id int) error {
	if v := c.Vertex(circuit.VertexID(id)); v != nil {
		fmt.Println(c.Describe(circuit.VertexRef(v.ID)))
		if v.Glyph != "" {
			fmt.Printf("Glyph override: %s\n", v.Glyph)
		}
		switch v.Host.Kind {
		case circuit.HostSegment:
			fmt.Printf("Attached to segment #%d\n", v.Host.Segment)
		case circuit.HostSymbol:
			fmt.Printf("Attached to symbol #%d\n", v.Host.Symbol)
		}
		if len(v.Edges) > 0 {
			fmt.Println("Edges:")
			for _, sid := range c.EdgeList(v) {
				fmt.Printf("  %s\n", c.Describe(circuit.SegmentRef(sid)))
			}
		}
		return nil
	}
	if s := c.Segment(circuit.SegmentID(id)); s != nil {
		fmt.Println(c.Describe(circuit.SegmentRef(s.ID)))
		a, b := c.SegmentEnds(s)
		fmt.Printf("Endpoints: (%.1f, %.1f) to (%.1f, %.1f)\n", a.X, a.Y, b.X, b.Y)
		if len(s.Attached) > 0 {
			fmt.Printf("Riders: %d\n", len(s.Attached))
		}
		for other, st := range s.Crossings {
			if st.Manual {
				fmt.Printf("Manual crossing style vs segment #%d: %q (flip=%v)\n", other, st.Glyph, st.Flip)
			}
		}
		return nil
	}
	if sym := c.Symbol(circuit.SymbolID(id)); sym != nil {
		fmt.Println(c.Describe(circuit.SymbolRef(sym.ID)))
		fmt.Printf("Scale: (%.2f, %.2f)\n", sym.Scale.X, sym.Scale.Y)
		fmt.Println("Ports:")
		for _, pid := range sym.Ports {
			fmt.Printf("  %s\n", c.Describe(circuit.VertexRef(pid)))
		}
		return nil
	}
	return fmt.Errorf("element #%d not found", id)
}
