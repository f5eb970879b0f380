package cli

import (
	"fmt"
	"os"

	"github.com/dimascad/ellingham/internal/tcexport"
	"github.com/spf13/cobra"
)

var (
	processRawDir string
	processOutDir string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process raw Thermo-Calc TSV exports into analysis-ready CSVs",
	Long: `Process reads the raw tab-separated dGf exports saved from interactive
sessions, adds Celsius and kJ columns plus the per-mole-O2 normalized
formation energy, and writes one CSV per input. Cu-activity exports are
converted to CSV unchanged.

Missing inputs are skipped with a note; a malformed file is reported and
the rest of the batch continues.

Example:
  ellingham process --raw data/raw --out data/processed`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processRawDir, "raw", "data/raw", "directory with raw TSV exports")
	processCmd.Flags().StringVar(&processOutDir, "out", "data/processed", "output directory for processed CSVs")
}

func runProcess(cmd *cobra.Command, args []string) error {
	results, err := tcexport.ProcessDir(processRawDir, processOutDir,
		tcexport.DefaultOxideFiles(), tcexport.DefaultActivityFiles())
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	processed, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
			if verbose {
				fmt.Fprintf(os.Stderr, "- %s: not found, skipped\n", r.Input)
			}
		case r.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Input, r.Err)
		default:
			processed++
			if verbose {
				fmt.Fprintf(os.Stderr, "✓ %s → %s (%d rows)\n", r.Input, r.Output, r.Rows)
			}
		}
	}

	fmt.Printf("Processed %d file(s), %d skipped, %d failed → %s\n",
		processed, skipped, failed, processOutDir)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}
