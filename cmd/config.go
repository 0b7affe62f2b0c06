package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/eventlens/eventlens-cli/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change EventLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := effectiveConfig()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(conf)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Print(string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and persist it",
	Long: `Set updates a single configuration key and writes the result back to the
config file. List-valued keys (patient_exclusions, product_exclusions) take a
comma-separated value.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := effectiveConfig()
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		if err := setConfigKey(conf, key, value); err != nil {
			return err
		}
		if err := conf.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(conf, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Set %s = %s\n", key, value)
		return nil
	},
}

func setConfigKey(conf *cfgpkg.Global, key, value string) error {
	switch key {
	case "manufacturer_threshold", "brand_threshold", "problem_threshold", "top_k":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s expects an integer, got %q", key, value)
		}
		switch key {
		case "manufacturer_threshold":
			conf.ManufacturerThreshold = n
		case "brand_threshold":
			conf.BrandThreshold = n
		case "problem_threshold":
			conf.ProblemThreshold = n
		case "top_k":
			conf.TopK = n
		}
	case "concentration_threshold", "outlier_z_cutoff":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s expects a number, got %q", key, value)
		}
		if key == "concentration_threshold" {
			conf.ConcentrationThreshold = f
		} else {
			conf.OutlierZCutoff = f
		}
	case "selection_mode":
		conf.SelectionMode = value
	case "date_error_policy":
		conf.DateErrorPolicy = value
	case "patient_exclusions", "product_exclusions":
		var items []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		if key == "patient_exclusions" {
			conf.PatientExclusions = items
		} else {
			conf.ProductExclusions = items
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
