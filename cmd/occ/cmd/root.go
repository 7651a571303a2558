package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "occ",
	Short: "OpenTraceCircuit - Schematic circuit snapshot tools",
	Long: `OpenTraceCircuit (occ) inspects and maintains circuit snapshot files:

Examples:
  occ info board.circ                 # Show snapshot summary
  occ info board.circ 12              # Show details for element 12
  occ validate board.circ             # Check structural invariants
  occ glyphs board.circ               # List resolved glyph placements
  occ fmt board.circ                  # Rewrite in canonical form`,
	Version: "0.9.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
