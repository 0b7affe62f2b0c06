package analysis

import "sort"

// SelectionMode picks how the concentration analyzer separates material
// categories from the "Other" bucket.
type SelectionMode string

const (
	// SelectPareto keeps categories until the running cumulative share
	// reaches the configured threshold.
	SelectPareto SelectionMode = "pareto"
	// SelectTopK keeps a fixed number of highest-count categories.
	SelectTopK SelectionMode = "topk"
)

// CategoryCount is one category with its occurrence count and share of the
// grand total.
type CategoryCount struct {
	Label         string
	Count         int
	Percent       float64
	CumulativePct float64
}

// Concentration is the outcome of an 80%-rule (or top-K) breakdown. The
// selected counts plus OtherCount always sum to Total exactly.
type Concentration struct {
	Field        string
	Selected     []CategoryCount
	OtherCount   int
	OtherPercent float64
	// SelectedPct is the cumulative share of the selected set; under pareto
	// selection it is threshold-or-greater, never less.
	SelectedPct float64
	Total       int
}

// Concentrate ranks categories by descending count (ties by ascending label)
// and splits them into a selected head plus an aggregated "Other" tail.
//
// Pareto mode includes category i while the cumulative share accumulated
// before i is strictly below threshold, so at least one category is always
// selected and the category that crosses the threshold is itself included.
// Top-K mode keeps the k highest-count categories. A zero-count input
// returns an empty result.
func Concentrate(field string, counts map[string]int, mode SelectionMode, threshold float64, k int) Concentration {
	ranked := make([]CategoryCount, 0, len(counts))
	total := 0
	for label, n := range counts {
		if n <= 0 {
			continue
		}
		ranked = append(ranked, CategoryCount{Label: label, Count: n})
		total += n
	}
	if total == 0 {
		return Concentration{Field: field}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count == ranked[j].Count {
			return ranked[i].Label < ranked[j].Label
		}
		return ranked[i].Count > ranked[j].Count
	})

	cumulative := 0
	var selected []CategoryCount
	for i, cc := range ranked {
		include := false
		switch mode {
		case SelectTopK:
			include = i < k
		default:
			include = float64(cumulative)/float64(total) < threshold
		}
		if !include {
			break
		}
		cumulative += cc.Count
		cc.Percent = 100 * float64(cc.Count) / float64(total)
		cc.CumulativePct = 100 * float64(cumulative) / float64(total)
		selected = append(selected, cc)
	}

	other := total - cumulative
	return Concentration{
		Field:        field,
		Selected:     selected,
		OtherCount:   other,
		OtherPercent: 100 * float64(other) / float64(total),
		SelectedPct:  100 * float64(cumulative) / float64(total),
		Total:        total,
	}
}
