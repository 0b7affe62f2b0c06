package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/eventlens/eventlens-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags (wired to config via loadConfig)
	cfgFile string
	debug   bool

	// Threshold flags (override config if set)
	flagManufacturerThr int
	flagBrandThr        int
	flagProblemThr      int
	flagConcentration   float64
	flagZCutoff         float64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "eventlens",
	Short: "EventLens CLI: turn messy adverse-event exports into analysis-ready summaries",
	Long:  `EventLens standardizes the categorical fields of medical device adverse-event reports (manufacturer, brand, problem codes) via fuzzy clustering, then summarizes them with concentration breakdowns and monthly outlier detection.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.eventlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagManufacturerThr, "manufacturer-threshold", 0, "similarity threshold for manufacturer grouping, 0-100 (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagBrandThr, "brand-threshold", 0, "similarity threshold for brand grouping, 0-100 (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagProblemThr, "problem-threshold", 0, "similarity threshold for problem-code grouping, 0-100 (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagConcentration, "concentration", 0, "cumulative-share cutoff for the concentration breakdown, (0,1) (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagZCutoff, "z-cutoff", 0, "z-score cutoff for monthly outliers (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("manufacturer-threshold") {
		cfg.ManufacturerThreshold = flagManufacturerThr
	}
	if f.Changed("brand-threshold") {
		cfg.BrandThreshold = flagBrandThr
	}
	if f.Changed("problem-threshold") {
		cfg.ProblemThreshold = flagProblemThr
	}
	if f.Changed("concentration") && flagConcentration > 0 {
		cfg.ConcentrationThreshold = flagConcentration
	}
	if f.Changed("z-cutoff") && flagZCutoff > 0 {
		cfg.OutlierZCutoff = flagZCutoff
	}
}

// effectiveConfig returns the loaded configuration, falling back to validated
// defaults when no config could be loaded.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	return cfgpkg.Load(cfgFile)
}
