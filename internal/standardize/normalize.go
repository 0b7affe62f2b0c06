package standardize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize reduces a raw text field to a comparable form: NFKC compatibility
// folding, uppercase, everything outside [A-Z0-9 ] replaced by a space, runs
// of whitespace collapsed, ends trimmed. Missing input yields "".
//
//	Normalize("Medtronic, Inc.") == "MEDTRONIC INC"
//	Normalize(" ACME--22 ")      == "ACME 22"
func Normalize(raw string) string {
	s := strings.ToUpper(norm.NFKC.String(raw))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeAll normalizes a column into a new slice, leaving the input alone.
func NormalizeAll(raw []string) []string {
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = Normalize(s)
	}
	return out
}

// Uniques returns the distinct non-empty values of a normalized column in
// first-appearance order. Order matters downstream: the grouper's partition
// depends on it.
func Uniques(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
