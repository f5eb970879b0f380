package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dimascad/ellingham/internal/bridge"
	"github.com/dimascad/ellingham/internal/cache"
	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/pipeline"
	"github.com/dimascad/ellingham/internal/worker"
	"github.com/spf13/cobra"
)

var (
	extractOxides   string
	extractTMin     float64
	extractTMax     float64
	extractTStep    float64
	extractOut      string
	extractBridge   string
	extractDatabase string
	extractTimeout  time.Duration
	extractNoCache  bool
	extractWorkers  int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Sweep oxide Gibbs energies from the calculation service",
	Long: `Extract computes formation energies against the bridge service:
for each oxide and temperature it calculates the oxide equilibrium, the
metal reference state, and the O2 reference, and writes the resulting
dGf-per-O2 table as a wide CSV. Results are cached on disk, so re-running
a sweep only pays for the points that changed.

Failed points are marked ERR in the output rather than dropped, so gaps
stay visible downstream.

Example:
  ellingham extract --out sweep.csv
  ellingham extract --oxides Cu2O,Al2O3 --tmin 1273 --tmax 1873 --step 25
  ellingham extract --bridge http://calc.lab:8585 --database TCOX14`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractOxides, "oxides", "", "comma-separated oxide selection (default: all built-ins)")
	extractCmd.Flags().Float64Var(&extractTMin, "tmin", 500, "grid start, K")
	extractCmd.Flags().Float64Var(&extractTMax, "tmax", 2000, "grid end, K")
	extractCmd.Flags().Float64Var(&extractTStep, "step", 50, "grid step, K")
	extractCmd.Flags().StringVar(&extractOut, "out", "sweep.csv", "output CSV path")
	extractCmd.Flags().StringVar(&extractBridge, "bridge", "", "bridge base URL (default from config)")
	extractCmd.Flags().StringVar(&extractDatabase, "database", "", "thermodynamic database (default from config)")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 10*time.Minute, "overall sweep timeout")
	extractCmd.Flags().BoolVar(&extractNoCache, "no-cache", false, "disable cache (force fresh calculations)")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "worker count (default from config)")
}

func runExtract(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if extractBridge != "" {
		cfg.Bridge.BaseURL = extractBridge
	}
	if extractDatabase != "" {
		cfg.Bridge.Database = extractDatabase
	}
	if extractNoCache {
		cfg.Cache.Enabled = false
	}
	if extractWorkers > 0 {
		cfg.Concurrency.Workers = extractWorkers
	}

	oxides, err := selectOxides(extractOxides)
	if err != nil {
		return err
	}
	grid, err := model.NewGrid(extractTMin, extractTMax, extractTStep)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Bridge:    %s (database %s)\n", cfg.Bridge.BaseURL, cfg.Bridge.Database)
		fmt.Fprintf(os.Stderr, "Sweep:     %d oxides × %d temperatures\n", len(oxides), grid.Len())
		fmt.Fprintf(os.Stderr, "Workers:   %d, cache %v\n", cfg.Concurrency.Workers, cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	client := bridge.NewClient(cfg.Bridge.BaseURL, cfg.Bridge.Timeout, cfg.Bridge.MaxBytes)
	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	sweeper := pipeline.NewSweeper(client, c, limiter, cfg)
	table, err := sweeper.Sweep(ctx, oxides, grid)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	f, err := os.Create(extractOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", extractOut, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := table.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", extractOut, err)
	}

	if verbose {
		for _, name := range table.Oxides {
			if phase, ok := table.Phases[name]; ok {
				fmt.Fprintf(os.Stderr, "✓ %s → phase %s\n", name, phase)
			}
		}
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("✓ Wrote sweep: %s (%d temperatures × %d oxides", extractOut, grid.Len(), len(table.Oxides))
	if n := table.ErrorCount(); n > 0 {
		fmt.Printf(", %d failed point(s)", n)
	}
	fmt.Println(")")
	return nil
}
