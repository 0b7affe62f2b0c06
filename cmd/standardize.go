package cmd

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/eventlens/eventlens-cli/internal/event"
	"github.com/eventlens/eventlens-cli/internal/fuzzy"
	"github.com/eventlens/eventlens-cli/internal/standardize"
	"github.com/eventlens/eventlens-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	stdOutputPath string
	stdDatePolicy string
)

var standardizeCmd = &cobra.Command{
	Use:   "standardize <file>",
	Short: "Emit the input records with standardized manufacturer and brand columns",
	Long:  `Standardize loads an adverse-event export, runs fuzzy name grouping on the manufacturer and brand columns, and writes the records back as CSV with manufacturer_std and brand_std columns appended.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := effectiveConfig()
		if err != nil {
			return err
		}

		policyName := conf.DateErrorPolicy
		if cmd.Flags().Changed("date-policy") {
			policyName = stdDatePolicy
		}
		var policy event.DatePolicy
		switch policyName {
		case "fail":
			policy = event.DateFail
		case "skip":
			policy = event.DateSkip
		default:
			return fmt.Errorf("unsupported --date-policy: %s (use fail|skip)", policyName)
		}

		res, err := event.LoadFile(args[0], policy)
		if err != nil {
			return err
		}

		mans := make([]string, len(res.Records))
		brands := make([]string, len(res.Records))
		for i, r := range res.Records {
			mans[i] = r.Manufacturer
			brands[i] = r.Brand
		}
		manStd := standardize.Column(mans, fuzzy.PartialRatio, conf.ManufacturerThreshold)
		brandStd := standardize.Column(brands, fuzzy.PartialRatio, conf.BrandThreshold)

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		header := []string{
			"report_id", "date_received", "manufacturer", "brand_name",
			"product_problems", "patient_problems",
			"manufacturer_std", "brand_std",
		}
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		for i, r := range res.Records {
			row := []string{
				r.ReportID,
				r.DateReceived.Format("2006-01-02"),
				r.Manufacturer,
				r.Brand,
				joinProblemList(r.ProductProblems),
				joinProblemList(r.PatientProblems),
				manStd.Values[i],
				brandStd.Values[i],
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush csv: %w", err)
		}

		if stdOutputPath != "" {
			if err := utils.SafeWriteFile(stdOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote %d standardized records to %s (%d distinct manufacturers, %d distinct brands)\n",
				len(res.Records), stdOutputPath, manStd.Distinct, brandStd.Distinct)
			return nil
		}
		fmt.Print(buf.String())
		return nil
	},
}

// joinProblemList re-serializes a problem list in the bracketed form used by
// openFDA CSV exports, e.g. ['Break', 'Leak'].
func joinProblemList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func init() {
	standardizeCmd.Flags().StringVarP(&stdOutputPath, "output", "o", "", "write the CSV to a file instead of stdout")
	standardizeCmd.Flags().StringVar(&stdDatePolicy, "date-policy", "", "unparseable date handling: fail|skip (overrides config)")
	rootCmd.AddCommand(standardizeCmd)
}
