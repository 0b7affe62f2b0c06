package analysis

import (
	"fmt"
	"strings"
)

// Markdown renders a compact report suitable for standalone docs or prompts.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[RUN]\n")
	b.WriteString(fmt.Sprintf("ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Records: %d\n", r.Records))
	if r.Rejected > 0 {
		b.WriteString(fmt.Sprintf("Rejected (unparseable dates): %d\n", r.Rejected))
	}

	b.WriteString("\n[STANDARDIZATION]\n")
	b.WriteString(fmt.Sprintf("- manufacturers: %d canonical labels\n", r.DistinctManufacturers))
	b.WriteString(fmt.Sprintf("- brands: %d canonical labels\n", r.DistinctBrands))

	writeConcentration(&b, "MANUFACTURERS", r.Manufacturers)
	writeConcentration(&b, "BRANDS", r.Brands)
	writeConcentration(&b, "PRODUCT PROBLEMS", r.ProductProblems)
	writeConcentration(&b, "PATIENT PROBLEMS", r.PatientProblems)

	b.WriteString("\n[MONTHLY OUTLIERS]\n")
	o := r.Outliers
	b.WriteString(fmt.Sprintf("Months: %d, mean %.1f, sd %.1f (cutoff |z| >= %.1f)\n",
		len(o.Buckets), o.Mean, o.StdDev, o.Cutoff))
	if len(o.Peaks) == 0 && len(o.Valleys) == 0 {
		b.WriteString("No statistically significant peaks or valleys detected.\n")
	}
	for _, p := range o.Peaks {
		b.WriteString(fmt.Sprintf("- peak %s: %d reports (z=%.2f, %+.1f%%)\n",
			p.Month.Format("January 2006"), p.Count, p.ZScore, p.DeviationPct))
	}
	for _, v := range o.Valleys {
		b.WriteString(fmt.Sprintf("- valley %s: %d reports (z=%.2f, %+.1f%%)\n",
			v.Month.Format("January 2006"), v.Count, v.ZScore, v.DeviationPct))
	}
	return b.String()
}

func writeConcentration(b *strings.Builder, title string, c Concentration) {
	b.WriteString(fmt.Sprintf("\n[CONCENTRATION %s]\n", title))
	if c.Total == 0 {
		b.WriteString("No observations.\n")
		return
	}
	b.WriteString(fmt.Sprintf("Total: %d, selected %d categories covering %.1f%%\n",
		c.Total, len(c.Selected), c.SelectedPct))
	for _, cc := range c.Selected {
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%, cum %.1f%%)\n",
			cc.Label, cc.Count, cc.Percent, cc.CumulativePct))
	}
	if c.OtherCount > 0 {
		b.WriteString(fmt.Sprintf("- Other: %d (%.1f%%)\n", c.OtherCount, c.OtherPercent))
	}
}
