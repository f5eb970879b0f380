package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dimascad/ellingham/internal/bridge"
	"github.com/dimascad/ellingham/internal/worker"
	"github.com/spf13/cobra"
)

var (
	phasesTMinC  float64
	phasesTMaxC  float64
	phasesTStepC float64
	phasesXAl    float64
	phasesXO     float64
	phasesOut    string
	phasesBridge string
	phasesDB     string
)

// phasesCmd represents the phases command
var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Map stable phases in the Cu-Al-O system over a temperature range",
	Long: `Phases sweeps a fixed Cu-Al-O composition over a Celsius temperature
range and records which phases are stable at each point, flagging the ones
that matter for the crucible question: the CuAlO2 delafossite, the CuAl2O4
spinel, and corundum.

The default composition (X(Al)=0.32, X(O)=0.48, balance Cu) sits inside
the three-phase region the study examined.

Example:
  ellingham phases
  ellingham phases --tmin 800 --tmax 1500 --step 25 --out cu-al-o.csv`,
	Args: cobra.NoArgs,
	RunE: runPhases,
}

func init() {
	rootCmd.AddCommand(phasesCmd)

	phasesCmd.Flags().Float64Var(&phasesTMinC, "tmin", 800, "sweep start, °C")
	phasesCmd.Flags().Float64Var(&phasesTMaxC, "tmax", 1500, "sweep end, °C")
	phasesCmd.Flags().Float64Var(&phasesTStepC, "step", 50, "sweep step, °C")
	phasesCmd.Flags().Float64Var(&phasesXAl, "xal", 0.32, "Al mole fraction")
	phasesCmd.Flags().Float64Var(&phasesXO, "xo", 0.48, "O mole fraction")
	phasesCmd.Flags().StringVar(&phasesOut, "out", "cu-al-o_phases.csv", "output CSV path")
	phasesCmd.Flags().StringVar(&phasesBridge, "bridge", "", "bridge base URL (default from config)")
	phasesCmd.Flags().StringVar(&phasesDB, "database", "", "thermodynamic database (default from config)")
}

// phaseFlags are the Cu-Al-O phases the study tracked, matched by substring
// against the bridge's phase names.
var phaseFlags = []struct {
	column  string
	pattern string
}{
	{"has_CuAlO2", "CUALO2"},
	{"has_spinel", "SPINEL"},
	{"has_corundum", "CORUNDUM"},
}

func runPhases(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if phasesBridge != "" {
		cfg.Bridge.BaseURL = phasesBridge
	}
	if phasesDB != "" {
		cfg.Bridge.Database = phasesDB
	}
	if phasesXAl <= 0 || phasesXO <= 0 || phasesXAl+phasesXO >= 1 {
		return fmt.Errorf("mole fractions X(Al)=%g, X(O)=%g must be positive and sum below 1", phasesXAl, phasesXO)
	}

	client := bridge.NewClient(cfg.Bridge.BaseURL, cfg.Bridge.Timeout, cfg.Bridge.MaxBytes)
	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	f, err := os.Create(phasesOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", phasesOut, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	cw := csv.NewWriter(f)
	header := []string{"T_C", "T_K", "stable_phases"}
	for _, pf := range phaseFlags {
		header = append(header, pf.column)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	points, failures := 0, 0
	for tC := phasesTMinC; tC <= phasesTMaxC+1e-9; tC += phasesTStepC {
		tK := tC + 273.15

		if err := limiter.Wait(ctx, client.BaseURL()); err != nil {
			return err
		}
		result, err := client.Equilibrium(ctx, bridge.EquilibriumRequest{
			Database:      cfg.Bridge.Database,
			Elements:      []string{"CU", "AL", "O"},
			TempK:         tK,
			PressurePa:    cfg.Bridge.Pressure,
			MoleFractions: map[string]float64{"AL": phasesXAl, "O": phasesXO},
		})
		if err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %.0f °C: %v\n", tC, err)
			record := []string{formatNum(tC), formatNum(tK), "ERR"}
			for range phaseFlags {
				record = append(record, "")
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			continue
		}

		record := []string{
			formatNum(tC),
			formatNum(tK),
			strings.Join(result.StablePhases, ";"),
		}
		for _, pf := range phaseFlags {
			record = append(record, strconv.FormatBool(hasPhase(result.StablePhases, pf.pattern)))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		points++

		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %.0f °C: %s\n", tC, strings.Join(result.StablePhases, ", "))
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote phase map: %s (%d points", phasesOut, points)
	if failures > 0 {
		fmt.Printf(", %d failed", failures)
	}
	fmt.Println(")")
	return nil
}

func hasPhase(phases []string, pattern string) bool {
	for _, p := range phases {
		if strings.Contains(strings.ToUpper(p), pattern) {
			return true
		}
	}
	return false
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
