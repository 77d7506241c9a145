package fuzzy

import (
	"sort"
	"strings"
)

type Weights struct {
	Levenshtein float64 `json:"levenshtein" yaml:"levenshtein" validate:"gte=0"`
	JaroWinkler float64 `json:"jaroWinkler" yaml:"jaroWinkler" validate:"gte=0"`
	NGram       float64 `json:"ngram" yaml:"ngram" validate:"gte=0"`
}

func DefaultWeights() Weights {
	return Weights{
		Levenshtein: 0.3,
		JaroWinkler: 0.4,
		NGram:       0.3,
	}
}

func (w Weights) sum() float64 {
	return w.Levenshtein + w.JaroWinkler + w.NGram
}

type Config struct {
	Threshold          float64 `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`
	CaseSensitive      bool    `json:"caseSensitive" yaml:"caseSensitive"`
	PreserveWhitespace bool    `json:"preserveWhitespace" yaml:"preserveWhitespace"`
	NGramSize          int     `json:"ngramSize" yaml:"ngramSize" validate:"gte=0"`
	PrefixScale        float64 `json:"prefixScale" yaml:"prefixScale" validate:"gte=0,lte=0.25"`
	Weights            Weights `json:"weights" yaml:"weights"`
}

func DefaultConfig() Config {
	return Config{
		Threshold:   0.7,
		NGramSize:   DefaultNGramSize,
		PrefixScale: DefaultPrefixScale,
		Weights:     DefaultWeights(),
	}
}

type NormalizeOptions struct {
	CaseSensitive      bool
	PreserveWhitespace bool
}

// Normalize lower-cases s unless CaseSensitive is set and collapses whitespace
// runs into single spaces unless PreserveWhitespace is set.
func Normalize(s string, opts NormalizeOptions) string {
	if !opts.CaseSensitive {
		s = strings.ToLower(s)
	}
	if !opts.PreserveWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}
	return s
}

type Scores struct {
	Levenshtein float64 `json:"levenshtein"`
	JaroWinkler float64 `json:"jaroWinkler"`
	NGram       float64 `json:"ngram"`
}

type MatchResult struct {
	Similarity float64 `json:"similarity"`
	IsMatch    bool    `json:"isMatch"`
	Scores     Scores  `json:"scores"`
}

// CompositeMatch normalizes a and b and combines edit, Jaro-Winkler and n-gram
// similarity with cfg.Weights. Weights that do not sum to one are rescaled.
func CompositeMatch(a, b string, cfg Config) MatchResult {
	opts := NormalizeOptions{CaseSensitive: cfg.CaseSensitive, PreserveWhitespace: cfg.PreserveWhitespace}
	na, nb := Normalize(a, opts), Normalize(b, opts)

	scores := Scores{
		Levenshtein: EditSimilarity(na, nb),
		JaroWinkler: PrefixBoostedSimilarity(na, nb, cfg.PrefixScale),
		NGram:       NGramSimilarity(na, nb, cfg.NGramSize),
	}

	w := cfg.Weights
	total := w.sum()
	if total <= 0 {
		w = DefaultWeights()
		total = w.sum()
	}

	similarity := Clamp((scores.Levenshtein*w.Levenshtein +
		scores.JaroWinkler*w.JaroWinkler +
		scores.NGram*w.NGram) / total)

	return MatchResult{
		Similarity: similarity,
		IsMatch:    similarity >= cfg.Threshold,
		Scores:     scores,
	}
}

// Match is one candidate scored by FindBestMatch or FindAllMatches.
// Index is -1 for the null match.
type Match struct {
	Value  string      `json:"value"`
	Index  int         `json:"index"`
	Result MatchResult `json:"result"`
}

func NullMatch() Match {
	return Match{Index: -1}
}

func (m Match) Found() bool {
	return m.Index >= 0
}

// FindAllMatches scores every candidate against query and returns those that
// clear cfg.Threshold, best first. Equal scores keep candidate order.
func FindAllMatches(query string, candidates []string, cfg Config) []Match {
	var matches []Match
	for i, c := range candidates {
		res := CompositeMatch(query, c, cfg)
		if !res.IsMatch {
			continue
		}
		matches = append(matches, Match{Value: c, Index: i, Result: res})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Result.Similarity > matches[j].Result.Similarity
	})

	return matches
}

// FindBestMatch returns the top hit of FindAllMatches, or NullMatch.
func FindBestMatch(query string, candidates []string, cfg Config) Match {
	matches := FindAllMatches(query, candidates, cfg)
	if len(matches) == 0 {
		return NullMatch()
	}
	return matches[0]
}
