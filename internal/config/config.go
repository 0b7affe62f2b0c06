package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure. Every analysis knob is externally supplied;
// the core packages never hardcode thresholds.
type Global struct {
	ManufacturerThreshold int `mapstructure:"manufacturer_threshold" yaml:"manufacturer_threshold"`
	BrandThreshold        int `mapstructure:"brand_threshold" yaml:"brand_threshold"`
	// ProblemThreshold of 0 disables fuzzy grouping for problem codes;
	// counting then uses the normalized values as-is.
	ProblemThreshold int `mapstructure:"problem_threshold" yaml:"problem_threshold"`

	ConcentrationThreshold float64 `mapstructure:"concentration_threshold" yaml:"concentration_threshold"`
	SelectionMode          string  `mapstructure:"selection_mode" yaml:"selection_mode"`
	TopK                   int     `mapstructure:"top_k" yaml:"top_k"`

	OutlierZCutoff float64 `mapstructure:"outlier_z_cutoff" yaml:"outlier_z_cutoff"`

	PatientExclusions []string `mapstructure:"patient_exclusions" yaml:"patient_exclusions"`
	ProductExclusions []string `mapstructure:"product_exclusions" yaml:"product_exclusions"`

	// DateErrorPolicy: "fail" aborts on an unparseable date_received,
	// "skip" drops the record and surfaces a rejected counter.
	DateErrorPolicy string `mapstructure:"date_error_policy" yaml:"date_error_policy"`
}

// DefaultPatientExclusions are patient-problem labels that carry no analytic
// signal and are removed before counting.
var DefaultPatientExclusions = []string{
	"No Code Available",
	"No Known Impact Or Consequence To Patient",
	"Symptoms or Conditions",
	"No Information",
	"No Consequences Or Impact To Patient",
	"Appropriate Clinical Signs",
	"No Clinical Signs",
	"Conditions Term / Code Not Available",
	"Insufficient Information",
	"No Patient Involvement",
	"Reaction",
	"Patient Problem/Medical Problem",
}

// DefaultProductExclusions are product-problem labels removed before counting.
var DefaultProductExclusions = []string{
	"Adverse Event Without Identified Device or Use Problem",
	"Appropriate Term/Code Not Available",
	"Unknown (for use when the device problem is not known)",
	"Insufficient Information",
	"No Apparent Adverse Event",
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.eventlens/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".eventlens")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EVENTLENS")
	v.AutomaticEnv()

	v.SetDefault("manufacturer_threshold", 65)
	v.SetDefault("brand_threshold", 75)
	v.SetDefault("problem_threshold", 0)
	v.SetDefault("concentration_threshold", 0.80)
	v.SetDefault("selection_mode", "pareto")
	v.SetDefault("top_k", 5)
	v.SetDefault("outlier_z_cutoff", 2.0)
	v.SetDefault("patient_exclusions", DefaultPatientExclusions)
	v.SetDefault("product_exclusions", DefaultProductExclusions)
	v.SetDefault("date_error_policy", "fail")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".eventlens")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects out-of-range values with named-field errors.
func (c *Global) Validate() error {
	if c.ManufacturerThreshold < 0 || c.ManufacturerThreshold > 100 {
		return fmt.Errorf("manufacturer_threshold must be in [0,100], got %d", c.ManufacturerThreshold)
	}
	if c.BrandThreshold < 0 || c.BrandThreshold > 100 {
		return fmt.Errorf("brand_threshold must be in [0,100], got %d", c.BrandThreshold)
	}
	if c.ProblemThreshold < 0 || c.ProblemThreshold > 100 {
		return fmt.Errorf("problem_threshold must be in [0,100], got %d", c.ProblemThreshold)
	}
	if c.ConcentrationThreshold <= 0 || c.ConcentrationThreshold >= 1 {
		return fmt.Errorf("concentration_threshold must be in (0,1), got %g", c.ConcentrationThreshold)
	}
	switch c.SelectionMode {
	case "pareto", "topk":
	default:
		return fmt.Errorf("selection_mode must be pareto or topk, got %q", c.SelectionMode)
	}
	if c.SelectionMode == "topk" && c.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1, got %d", c.TopK)
	}
	if c.OutlierZCutoff <= 0 {
		return fmt.Errorf("outlier_z_cutoff must be > 0, got %g", c.OutlierZCutoff)
	}
	switch c.DateErrorPolicy {
	case "fail", "skip":
	default:
		return fmt.Errorf("date_error_policy must be fail or skip, got %q", c.DateErrorPolicy)
	}
	return nil
}
