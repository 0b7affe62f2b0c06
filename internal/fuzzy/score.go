package fuzzy

// ScoreFunc rates the similarity of two strings on a 0-100 scale.
// Implementations are not required to be symmetric.
type ScoreFunc func(a, b string) int

// PartialRatio is a substring-tolerant alignment score: the shorter string is
// slid across every same-length window of the longer string and the best
// normalized edit-distance similarity wins. A short name contained verbatim
// in a longer one ("ACME CO" in "ACME CORP") scores 100.
func PartialRatio(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 && len(br) == 0 {
		return 100
	}
	if len(ar) == 0 || len(br) == 0 {
		return 0
	}
	short, long := ar, br
	if len(short) > len(long) {
		short, long = long, short
	}
	best := 0
	for start := 0; start+len(short) <= len(long); start++ {
		window := long[start : start+len(short)]
		dist := levenshtein(short, window)
		score := int(100 * (1 - float64(dist)/float64(len(short))))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// Ratio is the plain normalized edit-distance similarity of the full strings.
func Ratio(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 && len(br) == 0 {
		return 100
	}
	denom := len(ar)
	if len(br) > denom {
		denom = len(br)
	}
	if denom == 0 {
		return 100
	}
	dist := levenshtein(ar, br)
	return int(100 * (1 - float64(dist)/float64(denom)))
}

func levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range a {
		curr[0] = i + 1
		for j, cb := range b {
			ins := curr[j] + 1
			del := prev[j+1] + 1
			sub := prev[j]
			if ca != cb {
				sub++
			}
			curr[j+1] = min3(ins, del, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
