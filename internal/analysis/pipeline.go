package analysis

import (
	"time"

	"github.com/eventlens/eventlens-cli/internal/event"
	"github.com/eventlens/eventlens-cli/internal/fuzzy"
	"github.com/eventlens/eventlens-cli/internal/standardize"
	"github.com/google/uuid"
)

// Options controls one analysis run. Thresholds are externally supplied;
// see internal/config for the defaults exposed to the CLI.
type Options struct {
	// Score rates string similarity on a 0-100 scale. PartialRatio unless
	// overridden.
	Score fuzzy.ScoreFunc

	// Per-field similarity thresholds. 0 disables grouping for that field.
	ManufacturerThreshold int
	BrandThreshold        int
	ProblemThreshold      int

	Mode                   SelectionMode
	ConcentrationThreshold float64
	TopK                   int

	ZCutoff float64

	// Exclusions are category labels dropped before counting. Matching is
	// done on normalized forms, so spelling variants still match.
	PatientExclusions []string
	ProductExclusions []string
}

// DefaultOptions returns the analysis defaults used when no configuration is
// supplied.
func DefaultOptions() Options {
	return Options{
		Score:                  fuzzy.PartialRatio,
		ManufacturerThreshold:  65,
		BrandThreshold:         75,
		ProblemThreshold:       0,
		Mode:                   SelectPareto,
		ConcentrationThreshold: 0.80,
		TopK:                   5,
		ZCutoff:                2.0,
	}
}

// Report is the analysis-ready summary of one batch of records.
type Report struct {
	RunID    string
	Records  int
	Rejected int

	// Standardized columns, index-aligned with the input records.
	ManufacturerStd []string
	BrandStd        []string

	DistinctManufacturers int
	DistinctBrands        int

	Manufacturers   Concentration
	Brands          Concentration
	ProductProblems Concentration
	PatientProblems Concentration

	Outliers OutlierReport
}

// Run executes the full pipeline over one in-memory batch: standardize the
// manufacturer and brand columns, count problem categories with exclusions,
// break each field down by concentration, and flag monthly outliers. The
// input slice is treated as an immutable view.
func Run(records []event.Record, opt Options) *Report {
	if opt.Score == nil {
		opt.Score = fuzzy.PartialRatio
	}

	manuRaw := make([]string, len(records))
	brandRaw := make([]string, len(records))
	dates := make([]time.Time, len(records))
	for i, r := range records {
		manuRaw[i] = r.Manufacturer
		brandRaw[i] = r.Brand
		dates[i] = r.DateReceived
	}

	manu := standardize.Column(manuRaw, opt.Score, opt.ManufacturerThreshold)
	brand := standardize.Column(brandRaw, opt.Score, opt.BrandThreshold)

	rep := &Report{
		RunID:                 uuid.NewString(),
		Records:               len(records),
		ManufacturerStd:       manu.Values,
		BrandStd:              brand.Values,
		DistinctManufacturers: manu.Distinct,
		DistinctBrands:        brand.Distinct,
	}

	rep.Manufacturers = Concentrate("manufacturer", countValues(manu.Values, nil),
		opt.Mode, opt.ConcentrationThreshold, opt.TopK)
	rep.Brands = Concentrate("brand", countValues(brand.Values, nil),
		opt.Mode, opt.ConcentrationThreshold, opt.TopK)

	productVals := problemColumn(records, opt, func(r event.Record) []string { return r.ProductProblems })
	patientVals := problemColumn(records, opt, func(r event.Record) []string { return r.PatientProblems })
	rep.ProductProblems = Concentrate("product_problems",
		countValues(productVals, exclusionSet(opt.ProductExclusions)),
		opt.Mode, opt.ConcentrationThreshold, opt.TopK)
	rep.PatientProblems = Concentrate("patient_problems",
		countValues(patientVals, exclusionSet(opt.PatientExclusions)),
		opt.Mode, opt.ConcentrationThreshold, opt.TopK)

	rep.Outliers = DetectOutliers(BucketMonthly(dates), opt.ZCutoff)
	return rep
}

// problemColumn flattens per-record problem lists into one standardized
// column, preserving record order so clustering stays reproducible.
func problemColumn(records []event.Record, opt Options, pick func(event.Record) []string) []string {
	var raw []string
	for _, r := range records {
		raw = append(raw, pick(r)...)
	}
	return standardize.Column(raw, opt.Score, opt.ProblemThreshold).Values
}

// countValues tallies non-empty values, dropping excluded labels.
func countValues(values []string, exclude map[string]struct{}) map[string]int {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, drop := exclude[v]; drop {
			continue
		}
		counts[v]++
	}
	return counts
}

// exclusionSet normalizes exclusion labels so comparison happens in the same
// space as standardized values.
func exclusionSet(labels []string) map[string]struct{} {
	if len(labels) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if n := standardize.Normalize(l); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
