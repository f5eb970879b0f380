package cli

import (
	"fmt"
	"os"

	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/pipeline"
	"github.com/dimascad/ellingham/internal/screen"
	"github.com/spf13/cobra"
)

var (
	tableTemp   float64
	tableOxides string
	tableTDB    string
	tableCSV    string
	tableTMin   float64
	tableTMax   float64
	tableTStep  float64
)

// tableCmd represents the table command
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the oxide stability table at one temperature",
	Long: `Table prints dGf per mole O2 for the selected oxides at a single
temperature, most stable first. A quick terminal check without generating
a full report.

With --csv the full Ellingham table over the grid is written instead: one
temperature column pair, one dGf column per oxide.

Example:
  ellingham table
  ellingham table --t 1873
  ellingham table --t 1600 --oxides Cu2O,MgO,Al2O3 --tdb cuo.tdb
  ellingham table --csv curves.csv --tmin 1273 --tmax 1873 --step 25`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

func init() {
	rootCmd.AddCommand(tableCmd)

	tableCmd.Flags().Float64Var(&tableTemp, "t", 1873, "temperature, K")
	tableCmd.Flags().StringVar(&tableOxides, "oxides", "", "comma-separated oxide selection (default: all built-ins)")
	tableCmd.Flags().StringVar(&tableTDB, "tdb", "", "TDB database file (default: linearized models)")
	tableCmd.Flags().StringVar(&tableCSV, "csv", "", "write the full curve table to this CSV instead")
	tableCmd.Flags().Float64Var(&tableTMin, "tmin", 1273, "CSV grid start, K")
	tableCmd.Flags().Float64Var(&tableTMax, "tmax", 1873, "CSV grid end, K")
	tableCmd.Flags().Float64Var(&tableTStep, "step", 50, "CSV grid step, K")
}

func runTable(cmd *cobra.Command, args []string) error {
	if tableTemp <= 0 {
		return fmt.Errorf("temperature must be > 0 K, got %g", tableTemp)
	}

	oxides, err := selectOxides(tableOxides)
	if err != nil {
		return err
	}

	source, err := curveSource(tableTDB)
	if err != nil {
		return err
	}

	if tableCSV != "" {
		return writeCurveTable(source, oxides)
	}

	// A one-point grid reuses the curve path unchanged.
	grid, err := model.NewGrid(tableTemp, tableTemp, 1)
	if err != nil {
		return err
	}

	var curves []model.Curve
	for _, o := range oxides {
		c, err := source.Curve(o, grid)
		if err != nil {
			fmt.Printf("  %-6s (skipped: %v)\n", o.Name, err)
			continue
		}
		curves = append(curves, c)
	}

	rankings, err := screen.Rank(curves, tableTemp)
	if err != nil {
		return err
	}

	fmt.Printf("\nOxide stability at %.0f K (%.0f °C), source %s\n\n",
		tableTemp, model.KelvinToCelsius(tableTemp), source.Name())
	fmt.Printf("  %-4s %-7s %14s\n", "Rank", "Oxide", "ΔGf kJ/mol O₂")
	for _, r := range rankings {
		fmt.Printf("  %-4d %-7s %14.1f\n", r.Rank, r.Oxide, r.DGPerO2)
	}
	fmt.Println()
	return nil
}

// writeCurveTable renders the Ellingham curve table without the rest of the
// screening report.
func writeCurveTable(source pipeline.CurveSource, oxides []model.Oxide) error {
	grid, err := model.NewGrid(tableTMin, tableTMax, tableTStep)
	if err != nil {
		return err
	}

	report := &model.Report{}
	for _, o := range oxides {
		c, err := source.Curve(o, grid)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.Name, err)
			continue
		}
		report.Curves = append(report.Curves, c)
	}
	if len(report.Curves) == 0 {
		return fmt.Errorf("no curves could be computed from %s", source.Name())
	}

	if err := pipeline.NewRenderer(false).RenderCSV(report, tableCSV); err != nil {
		return fmt.Errorf("write %s: %w", tableCSV, err)
	}
	fmt.Printf("✓ Wrote curve table: %s (%d temperatures × %d oxides)\n",
		tableCSV, grid.Len(), len(report.Curves))
	return nil
}
