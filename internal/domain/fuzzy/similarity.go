// Package fuzzy implements the string-similarity primitives used to match
// natural-language descriptions against UI element text.
//
// Every function here is pure and safe for concurrent use. Scores are always
// clamped to [0,1]; absence of a match is reported as a zero score or a
// sentinel Match, never as an error.
package fuzzy

const (
	DefaultPrefixScale = 0.1
	DefaultNGramSize   = 2

	maxPrefixLength = 4
	maxPrefixScale  = 0.25
)

// EditDistance returns the Levenshtein distance between a and b counted in runes.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// EditSimilarity is 1 - distance/maxLen, and 1 when both inputs are empty.
func EditSimilarity(a, b string) float64 {
	maxLen := max(runeLen(a), runeLen(b))
	if maxLen == 0 {
		return 1
	}
	return Clamp(1 - float64(EditDistance(a, b))/float64(maxLen))
}

// TranspositionSimilarity is the Jaro similarity of a and b.
func TranspositionSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if a == b {
		return 1
	}

	window := max(len(ra), len(rb))/2 - 1
	if window < 0 {
		window = 0
	}

	matchedA := make([]bool, len(ra))
	matchedB := make([]bool, len(rb))
	matches := 0

	for i := range ra {
		lo := max(0, i-window)
		hi := min(len(rb)-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || ra[i] != rb[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	halfTranspositions := 0
	k := 0
	for i := range ra {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if ra[i] != rb[k] {
			halfTranspositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(halfTranspositions) / 2
	jaro := (m/float64(len(ra)) + m/float64(len(rb)) + (m-t)/m) / 3
	return Clamp(jaro)
}

// PrefixBoostedSimilarity is the Jaro-Winkler similarity: the Jaro score plus a
// bonus for a shared prefix of up to four runes. A non-positive prefixScale
// selects DefaultPrefixScale.
func PrefixBoostedSimilarity(a, b string, prefixScale float64) float64 {
	if prefixScale <= 0 {
		prefixScale = DefaultPrefixScale
	}
	prefixScale = min(prefixScale, maxPrefixScale)

	base := TranspositionSimilarity(a, b)

	ra, rb := []rune(a), []rune(b)
	prefix := 0
	for prefix < min(len(ra), len(rb), maxPrefixLength) && ra[prefix] == rb[prefix] {
		prefix++
	}

	return Clamp(base + float64(prefix)*prefixScale*(1-base))
}

// NGramSimilarity is the Dice coefficient of the character n-gram sets of a and b.
// A string shorter than n counts as a single n-gram.
func NGramSimilarity(a, b string, n int) float64 {
	if n <= 0 {
		n = DefaultNGramSize
	}
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	ga := ngrams(a, n)
	gb := ngrams(b, n)

	shared := 0
	for g := range ga {
		if _, ok := gb[g]; ok {
			shared++
		}
	}

	return Clamp(2 * float64(shared) / float64(len(ga)+len(gb)))
}

func ngrams(s string, n int) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	if len(runes) < n {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+n <= len(runes); i++ {
		set[string(runes[i:i+n])] = struct{}{}
	}
	return set
}

// Clamp bounds v to [0,1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func runeLen(s string) int {
	return len([]rune(s))
}
