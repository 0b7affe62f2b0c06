package standardize

import "github.com/eventlens/eventlens-cli/internal/fuzzy"

// Cluster is an ordered group of normalized values linked to its seed, the
// first value that started the cluster. Members keep first-seen order.
type Cluster struct {
	Seed    string
	Members []string
}

// Group partitions values into clusters by greedy single-link matching: each
// value is compared against existing cluster seeds in creation order and
// joins the first whose seed scores strictly above threshold; otherwise it
// opens a new cluster. The partition depends on input order, which callers
// must preserve (first-appearance order of the source column). Empty values
// are skipped.
func Group(values []string, score fuzzy.ScoreFunc, threshold int) []Cluster {
	var clusters []Cluster
	for _, v := range values {
		if v == "" {
			continue
		}
		matched := false
		for i := range clusters {
			if score(v, clusters[i].Seed) > threshold {
				clusters[i].Members = append(clusters[i].Members, v)
				matched = true
				break
			}
		}
		if !matched {
			clusters = append(clusters, Cluster{Seed: v, Members: []string{v}})
		}
	}
	return clusters
}

// Canonical picks the cluster's label: the shortest member, earliest
// first-seen on ties. The label is always a member of its own cluster.
func (c Cluster) Canonical() string {
	best := c.Members[0]
	for _, m := range c.Members[1:] {
		if len(m) < len(best) {
			best = m
		}
	}
	return best
}
