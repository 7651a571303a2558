package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circfile"
	"github.com/OpenTraceLab/OpenTraceCircuit/pkg/circuit"
	"github.com/spf13/cobra"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <snapshot_file>",
	Short: "Rewrite a snapshot in canonical form",
	Long: `Load a snapshot and emit it in canonical form: elements ordered by
ID, numbers minimally printed, one element per line. Prints to stdout
unless -w is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result back to the file")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	filename := args[0]
	c, err := circfile.LoadFile(filename, circuit.StandardLibrary())
	if err != nil {
		return fmt.Errorf("error loading snapshot: %w", err)
	}

	if fmtWrite {
		if err := circfile.SaveFile(filename, c); err != nil {
			return fmt.Errorf("error writing snapshot: %w", err)
		}
		return nil
	}
	if err := circfile.Save(os.Stdout, c); err != nil {
		return fmt.Errorf("error writing snapshot: %w", err)
	}
	return nil
}
