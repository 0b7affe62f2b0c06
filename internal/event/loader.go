package event

import (
	"fmt"
	"strings"
)

// Loader reads adverse-event records from one on-disk export format.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, policy DatePolicy) (*LoadResult, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader by filename and reads the records.
func LoadFile(path string, policy DatePolicy) (*LoadResult, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, policy)
		}
	}
	return nil, fmt.Errorf("no loader for %s (expected .csv, .tsv, .json or .xlsx)", path)
}

// splitProblemList splits a serialized problem-list cell. Exports carry
// Python-style list literals ("['Break', 'Leak']"); the brackets and quotes
// are stripped and entries split on ", ".
func splitProblemList(cell string) []string {
	s := strings.TrimSpace(cell)
	s = strings.NewReplacer("[", "", "]", "", "'", "", `"`, "").Replace(s)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	Register(csvLoader{})
	Register(jsonLoader{})
	Register(xlsxLoader{})
}
