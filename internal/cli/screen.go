package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	screenOxides string
	screenTMin   float64
	screenTMax   float64
	screenTStep  float64
	screenRefT   float64
	screenTDB    string
	outJSON      string
	outCSV       string
	outMD        string
	noFooter     bool
	llmEnabled   bool
	llmProvider  string
	llmModel     string
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run the full oxide stability screening and generate a report",
	Long: `Screen computes Ellingham curves for the selected oxides over a
temperature grid, ranks them by stability at the reference temperature,
checks whether molten Cu can reduce the crucible ceramics, and evaluates
the FeS/Cu2S exchange route.

By default the built-in linearized dGf models are used; pass --tdb to
evaluate an assessed CALPHAD database instead.

Example:
  ellingham screen
  ellingham screen --oxides Cu2O,Al2O3,MgO --ref 1873 --json report.json
  ellingham screen --tdb cuo.tdb --csv curves.csv --md report.md
  ellingham screen --llm --llm-model gpt-4o-mini --md report.md`,
	Args: cobra.NoArgs,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenOxides, "oxides", "", "comma-separated oxide selection (default: all built-ins)")
	screenCmd.Flags().Float64Var(&screenTMin, "tmin", 1273, "grid start, K")
	screenCmd.Flags().Float64Var(&screenTMax, "tmax", 1873, "grid end, K")
	screenCmd.Flags().Float64Var(&screenTStep, "step", 50, "grid step, K")
	screenCmd.Flags().Float64Var(&screenRefT, "ref", 1873, "reference temperature for ranking and reaction checks, K")
	screenCmd.Flags().StringVar(&screenTDB, "tdb", "", "TDB database file (default: linearized models)")

	screenCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	screenCmd.Flags().StringVar(&outCSV, "csv", "", "output curves CSV path (optional)")
	screenCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	screenCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	screenCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM summary generation")
	screenCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	screenCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Output.IncludeFooter = !noFooter

	if llmEnabled {
		if err := configureLLM(cfg); err != nil {
			return err
		}
	}

	oxides, err := selectOxides(screenOxides)
	if err != nil {
		return err
	}

	grid, err := model.NewGrid(screenTMin, screenTMax, screenTStep)
	if err != nil {
		return err
	}

	source, err := curveSource(screenTDB)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Screening %d oxides over %.0f-%.0f K (step %.0f K)\n",
			len(oxides), screenTMin, screenTMax, screenTStep)
		fmt.Fprintf(os.Stderr, "Source: %s\n", source.Name())
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, source)
	report, err := p.Screen(ctx, pipeline.ScreenOptions{
		Oxides:   oxides,
		Grid:     grid,
		RefTempK: screenRefT,
	})
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Computed %d curves\n", len(report.Curves))
		fmt.Fprintf(os.Stderr, "✓ Ranked %d oxides at %.0f K\n", len(report.Rankings), report.RefTempK)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outCSV, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// selectOxides resolves a comma-separated selection, empty meaning all.
func selectOxides(spec string) ([]model.Oxide, error) {
	if strings.TrimSpace(spec) == "" {
		return model.DefaultOxides(), nil
	}

	var names []string
	for _, n := range strings.Split(spec, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	oxides, unknown := model.OxidesByName(names)
	if len(unknown) > 0 {
		known := make([]string, 0)
		for _, o := range model.DefaultOxides() {
			known = append(known, o.Name)
		}
		return nil, fmt.Errorf("unknown oxides %v (available: %s)", unknown, strings.Join(known, ", "))
	}
	return oxides, nil
}

// curveSource picks linearized models or a TDB file.
func curveSource(tdbPath string) (pipeline.CurveSource, error) {
	if tdbPath == "" {
		return pipeline.LinearSource{}, nil
	}

	source, err := pipeline.NewTDBSource(tdbPath)
	if err != nil {
		return nil, fmt.Errorf("load TDB %s: %w", tdbPath, err)
	}
	if verbose {
		for _, w := range source.Warnings() {
			fmt.Fprintf(os.Stderr, "TDB warning: %s\n", w)
		}
	}
	return source, nil
}

// buildConfig assembles the runtime configuration: defaults, then config
// file and environment overrides through viper, then the resolved cache
// directory. Flags override per command.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose

	if v := viper.GetString("bridge.base_url"); v != "" {
		cfg.Bridge.BaseURL = v
	}
	if v := viper.GetString("bridge.database"); v != "" {
		cfg.Bridge.Database = v
	}
	if v := viper.GetDuration("bridge.timeout"); v > 0 {
		cfg.Bridge.Timeout = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}

	if cfg.Cache.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		cfg.Cache.Dir = filepath.Join(home, ".ellingham", "cache")
	}
	return cfg, nil
}

// configureLLM wires the LLM flags and reads the API key from the
// environment; keys never live in the config file.
func configureLLM(cfg *model.Config) error {
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.StrictNumbers = true

	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %s", llmProvider)
	}
	return nil
}
