package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ellingham",
	Short: "Ellingham - oxide stability screening for Cu removal from recycled steel",
	Long: `Ellingham screens candidate ceramics against molten copper-bearing steel
using Ellingham diagrams: Gibbs free energies of oxide formation, normalized
per mole of O2, compared over a temperature grid.

It answers screening questions only:
- Which oxides are stable enough that molten Cu cannot reduce them?
- Is the sulfide exchange route (FeS + Cu) thermodynamically open?

It says nothing about kinetics, wetting, or mechanical durability. Curves
come from built-in linearized models, an assessed TDB file, or temperature
sweeps against a thermodynamic calculation service.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Ellingham.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ellingham v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ellingham/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.ellingham")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ELLINGHAM_*
	viper.SetEnvPrefix("ELLINGHAM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
