package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dimascad/ellingham/internal/bridge"
	"github.com/spf13/cobra"
)

var (
	databasesBridge   string
	databasesElements string
)

// databasesCmd represents the databases command
var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List databases available behind the bridge service",
	Long: `Databases queries the bridge for its installed thermodynamic databases.
With --elements it also lists the phases each database defines for that
element system, which is how phase name patterns for new oxides are found.

Example:
  ellingham databases
  ellingham databases --elements CU,O
  ellingham databases --bridge http://calc.lab:8585 --elements CU,AL,O`,
	Args: cobra.NoArgs,
	RunE: runDatabases,
}

func init() {
	rootCmd.AddCommand(databasesCmd)

	databasesCmd.Flags().StringVar(&databasesBridge, "bridge", "", "bridge base URL (default from config)")
	databasesCmd.Flags().StringVar(&databasesElements, "elements", "", "comma-separated elements to list phases for")
}

func runDatabases(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if databasesBridge != "" {
		cfg.Bridge.BaseURL = databasesBridge
	}

	client := bridge.NewClient(cfg.Bridge.BaseURL, cfg.Bridge.Timeout, cfg.Bridge.MaxBytes)

	names, err := client.Databases(ctx)
	if err != nil {
		return fmt.Errorf("list databases: %w", err)
	}

	fmt.Printf("Databases at %s:\n", cfg.Bridge.BaseURL)
	for _, name := range names {
		marker := " "
		if name == cfg.Bridge.Database {
			marker = "*"
		}
		fmt.Printf("  %s %s\n", marker, name)
	}

	if databasesElements == "" {
		return nil
	}

	var elements []string
	for _, el := range strings.Split(databasesElements, ",") {
		if el = strings.TrimSpace(strings.ToUpper(el)); el != "" {
			elements = append(elements, el)
		}
	}

	fmt.Println()
	for _, name := range names {
		phases, err := client.Phases(ctx, name, elements)
		if err != nil {
			fmt.Printf("%s [%s]: %v\n", name, strings.Join(elements, "-"), err)
			continue
		}
		fmt.Printf("%s [%s]: %d phases\n", name, strings.Join(elements, "-"), len(phases))
		for _, p := range phases {
			fmt.Printf("    %s\n", p)
		}
	}
	return nil
}
