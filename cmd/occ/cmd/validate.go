package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circfile"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <snapshot_file>",
	Short: "Check snapshot structural invariants",
	Long: `Load a circuit snapshot and check its structural invariants:
edge symmetry, axis canonicality, attachment consistency, and crossing
style mirroring. Exits non-zero when any issue is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	filename := args[0]
	c, err := circfile.LoadFile(filename, circuit.StandardLibrary())
	if err != nil {
		return fmt.Errorf("error loading snapshot: %w", err)
	}

	issues := c.Validate()
	if len(issues) == 0 {
		fmt.Printf("%s: OK\n", filename)
		return nil
	}
	fmt.Printf("%s: %d issue(s)\n", filename, len(issues))
	for _, issue := range issues {
		fmt.Printf("  %s\n", issue)
	}
	os.Exit(1)
	return nil
}
