package reconciliation

// maxComparableLength caps the strings fed into the edit distance so a
// pathological description cannot blow up the DP table.
const maxComparableLength = 255

// charOverlapRatio measures how many characters the two strings share,
// as a fraction of the longer string. Both inputs are expected to be
// lower-cased by the caller. Repeated characters count once per
// occurrence in the shorter string.
func charOverlapRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	var pool [256]int
	for i := 0; i < len(b); i++ {
		pool[b[i]]++
	}

	overlap := 0
	for i := 0; i < len(a); i++ {
		if pool[a[i]] > 0 {
			pool[a[i]]--
			overlap++
		}
	}
	return float64(overlap) / float64(len(b))
}

// normalizedEditDistance returns the Levenshtein distance between the
// two strings divided by the length of the longer one, in [0, 1].
// Inputs longer than maxComparableLength are truncated first.
func normalizedEditDistance(a, b string) float64 {
	if len(a) > maxComparableLength {
		a = a[:maxComparableLength]
	}
	if len(b) > maxComparableLength {
		b = b[:maxComparableLength]
	}
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(levenshtein(a, b)) / float64(longer)
}

// levenshtein computes the classic edit distance with a two-row table
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
