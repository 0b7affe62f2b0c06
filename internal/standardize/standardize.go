package standardize

import "github.com/eventlens/eventlens-cli/internal/fuzzy"

// Mapping rewrites normalized values to their cluster's canonical label.
// It is total over the values it was built from; the empty string maps to
// itself, and values never seen map to themselves, so applying a mapping to
// an already-standardized column is a no-op.
type Mapping map[string]string

// BuildMapping flattens clusters into a value-to-canonical lookup.
func BuildMapping(clusters []Cluster) Mapping {
	m := make(Mapping, len(clusters))
	m[""] = ""
	for _, c := range clusters {
		canonical := c.Canonical()
		for _, member := range c.Members {
			m[member] = canonical
		}
	}
	return m
}

// Lookup returns the canonical label for a normalized value, falling back to
// the value itself when it was not part of the clustered set.
func (m Mapping) Lookup(v string) string {
	if canonical, ok := m[v]; ok {
		return canonical
	}
	return v
}

// Apply normalizes a raw column and rewrites each cell through the mapping.
// A new slice is returned; the input is never mutated.
func (m Mapping) Apply(raw []string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = m.Lookup(Normalize(s))
	}
	return out
}

// Result is a standardized column together with the mapping that produced it.
type Result struct {
	Values   []string
	Mapping  Mapping
	Clusters []Cluster
	// Distinct counts the canonical labels present in Values, the empty
	// string excluded.
	Distinct int
}

// Column runs the full pipeline on a raw column: normalize, cluster the
// distinct values in first-appearance order, pick canonical labels and
// rewrite every cell. A threshold <= 0 disables grouping: each distinct
// normalized value becomes its own canonical label.
func Column(raw []string, score fuzzy.ScoreFunc, threshold int) Result {
	normalized := NormalizeAll(raw)
	uniques := Uniques(normalized)

	var mapping Mapping
	var clusters []Cluster
	if threshold > 0 {
		clusters = Group(uniques, score, threshold)
		mapping = BuildMapping(clusters)
	} else {
		mapping = make(Mapping, len(uniques)+1)
		mapping[""] = ""
		for _, v := range uniques {
			mapping[v] = v
			clusters = append(clusters, Cluster{Seed: v, Members: []string{v}})
		}
	}

	values := make([]string, len(normalized))
	distinct := make(map[string]struct{})
	for i, v := range normalized {
		canonical := mapping.Lookup(v)
		values[i] = canonical
		if canonical != "" {
			distinct[canonical] = struct{}{}
		}
	}
	return Result{Values: values, Mapping: mapping, Clusters: clusters, Distinct: len(distinct)}
}
