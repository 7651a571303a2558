package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circfile"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/spf13/cobra"
)

var glyphsCmd = &cobra.Command{
	Use:   "glyphs <snapshot_file>",
	Short: "List resolved glyph placements",
	Long: `Build the render scene for a snapshot and list every resolved glyph:
crossing hops, junction dots, taps, and elbows, with position and facing.`,
	Args: cobra.ExactArgs(1),
	RunE: runGlyphs,
}

func init() {
	rootCmd.AddCommand(glyphsCmd)
}

func runGlyphs(cmd *cobra.Command, args []string) error {
	filename := args[0]
	c, err := circfile.LoadFile(filename, circuit.StandardLibrary())
	if err != nil {
		return fmt.Errorf("error loading snapshot: %w", err)
	}

	scene := circuit.BuildScene(c)
	fmt.Printf("Glyphs: %d\n", len(scene.Glyphs))
	for _, g := range scene.Glyphs {
		flip := ""
		if g.Flip {
			flip = " (flipped)"
		}
		fmt.Printf("  %s at (%.1f, %.1f) facing (%.2f, %.2f)%s\n",
			g.Name, g.At.X, g.At.Y, g.Dir.X, g.Dir.Y, flip)
	}

	if verbose {
		fmt.Println()
		fmt.Println("Segment sections:")
		for _, sv := range scene.Segments {
			fmt.Printf("  segment #%d (%s): %d section(s)\n", sv.ID, sv.Type, len(sv.Sections))
			for _, sec := range sv.Sections {
				fmt.Printf("    (%.1f, %.1f) to (%.1f, %.1f)\n",
					sec.From.X, sec.From.Y, sec.To.X, sec.To.Y)
			}
		}
	}
	return nil
}
