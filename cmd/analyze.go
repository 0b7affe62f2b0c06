package cmd

import (
	"fmt"
	"os"

	"github.com/eventlens/eventlens-cli/internal/analysis"
	cfgpkg "github.com/eventlens/eventlens-cli/internal/config"
	"github.com/eventlens/eventlens-cli/internal/event"
	"github.com/eventlens/eventlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaJSON       bool
	anaMode       string
	anaTopK       int
	anaDatePolicy string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze an adverse-event export and produce a summary report",
	Long:  `Analyze loads a CSV/TSV or openFDA JSON export of adverse-event reports, standardizes manufacturer and brand names, and reports concentration breakdowns per field plus statistically significant monthly reporting peaks and valleys.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := effectiveConfig()
		if err != nil {
			return err
		}
		opt, policy, err := buildOptions(cmd, conf)
		if err != nil {
			return err
		}

		res, err := event.LoadFile(args[0], policy)
		if err != nil {
			return err
		}
		if debug {
			fmt.Fprintf(os.Stderr, "loaded %d records (%d rejected) from %s\n", len(res.Records), res.Rejected, args[0])
		}

		rep := analysis.Run(res.Records, opt)
		rep.Rejected = res.Rejected

		var out []byte
		if anaJSON {
			out, err = utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
		} else {
			out = []byte(rep.Markdown())
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Print(string(out))
		return nil
	},
}

// buildOptions maps the effective configuration and per-command flags to
// analysis options plus the date handling policy.
func buildOptions(cmd *cobra.Command, conf *cfgpkg.Global) (analysis.Options, event.DatePolicy, error) {
	opt := analysis.DefaultOptions()
	opt.ManufacturerThreshold = conf.ManufacturerThreshold
	opt.BrandThreshold = conf.BrandThreshold
	opt.ProblemThreshold = conf.ProblemThreshold
	opt.ConcentrationThreshold = conf.ConcentrationThreshold
	opt.TopK = conf.TopK
	opt.ZCutoff = conf.OutlierZCutoff
	opt.PatientExclusions = conf.PatientExclusions
	opt.ProductExclusions = conf.ProductExclusions

	mode := conf.SelectionMode
	if cmd.Flags().Changed("mode") {
		mode = anaMode
	}
	switch mode {
	case "pareto":
		opt.Mode = analysis.SelectPareto
	case "topk":
		opt.Mode = analysis.SelectTopK
		if cmd.Flags().Changed("top-k") {
			opt.TopK = anaTopK
		}
		if opt.TopK < 1 {
			return opt, "", fmt.Errorf("top-k must be >= 1, got %d", opt.TopK)
		}
	default:
		return opt, "", fmt.Errorf("unsupported --mode: %s (use pareto|topk)", mode)
	}

	policyName := conf.DateErrorPolicy
	if cmd.Flags().Changed("date-policy") {
		policyName = anaDatePolicy
	}
	var policy event.DatePolicy
	switch policyName {
	case "fail":
		policy = event.DateFail
	case "skip":
		policy = event.DateSkip
	default:
		return opt, "", fmt.Errorf("unsupported --date-policy: %s (use fail|skip)", policyName)
	}
	return opt, policy, nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit the full report as JSON instead of markdown")
	analyzeCmd.Flags().StringVar(&anaMode, "mode", "", "category selection mode: pareto|topk (overrides config)")
	analyzeCmd.Flags().IntVar(&anaTopK, "top-k", 0, "number of categories to keep in topk mode (overrides config)")
	analyzeCmd.Flags().StringVar(&anaDatePolicy, "date-policy", "", "unparseable date handling: fail|skip (overrides config)")
	rootCmd.AddCommand(analyzeCmd)
}
