package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

const containsWordThreshold = 0.8

// Tokenize splits s on camelCase/PascalCase boundaries and on '_', '-' and
// whitespace. Tokens are lower-cased; empty tokens are dropped.
//
//	"submitButton"  -> [submit button]
//	"XMLHttpRequest" -> [xml http request]
//	"first_name-input" -> [first name input]
func Tokenize(s string) []string {
	runes := []rune(s)
	var tokens []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return tokens
}

// TokenSimilarity is the Jaccard similarity of the Tokenize sets of a and b.
func TokenSimilarity(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return Clamp(float64(shared) / float64(union))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(s) {
		set[t] = struct{}{}
	}
	return set
}

// WordSimilarity aligns the words of a and b one-to-one, greedily taking the
// highest composite pair first, and averages the aligned scores over the
// longer phrase. Word order does not matter; unaligned words count as zero.
func WordSimilarity(a, b string, cfg Config) float64 {
	opts := NormalizeOptions{CaseSensitive: cfg.CaseSensitive}
	wa := strings.Fields(Normalize(a, opts))
	wb := strings.Fields(Normalize(b, opts))

	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	type pair struct {
		i, j  int
		score float64
	}
	pairs := make([]pair, 0, len(wa)*len(wb))
	for i, x := range wa {
		for j, y := range wb {
			pairs = append(pairs, pair{i: i, j: j, score: CompositeMatch(x, y, cfg).Similarity})
		}
	}
	sort.SliceStable(pairs, func(x, y int) bool {
		return pairs[x].score > pairs[y].score
	})

	usedA := make([]bool, len(wa))
	usedB := make([]bool, len(wb))
	total := 0.0
	for _, p := range pairs {
		if usedA[p.i] || usedB[p.j] {
			continue
		}
		usedA[p.i] = true
		usedB[p.j] = true
		total += p.score
	}

	return Clamp(total / float64(max(len(wa), len(wb))))
}

// ContainsFuzzy reports whether every word of needle has a close counterpart
// (composite similarity >= 0.8) among the words of haystack. Plain substring
// containment short-circuits to true.
func ContainsFuzzy(haystack, needle string) bool {
	h := Normalize(haystack, NormalizeOptions{})
	n := Normalize(needle, NormalizeOptions{})

	if n == "" {
		return true
	}
	if strings.Contains(h, n) {
		return true
	}

	hWords := strings.Fields(h)
	if len(hWords) == 0 {
		return false
	}

	cfg := DefaultConfig()
	for _, nw := range strings.Fields(n) {
		found := false
		for _, hw := range hWords {
			if CompositeMatch(nw, hw, cfg).Similarity >= containsWordThreshold {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
