package search

import (
	"fmt"
	"regexp"
	"strings"

	"intent-resolver/internal/domain/alias"
	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/domain/fuzzy"

	subseq "github.com/sahilm/fuzzy"
)

const (
	containsExactScore  = 0.9
	containsFuzzyScore  = 0.7
	inferredRoleScore   = 0.8
	synonymScore        = 0.85
	idSubsequenceScore  = 0.7
	reasonMinimumScore  = 0.5
	nearFalloffMultiple = 3.0
)

// query is the per-search state shared by every candidate.
type query struct {
	criteria entity.SearchCriteria
	weights  Weights
	fuzzy    fuzzy.Config
	useFuzzy bool
	radius   float64

	// nil when Near was requested but could not be resolved
	anchor *entity.SearchableElement
	idRe   *regexp.Regexp
	text   string
}

type accumulator struct {
	sum, total float64
	scores     entity.SearchScores
	reasons    []string
}

func (a *accumulator) add(score, weight float64, slot **float64) {
	score = fuzzy.Clamp(score)
	*slot = entity.Float(score)
	a.sum += score * weight
	a.total += weight
}

func (a *accumulator) reason(format string, args ...any) {
	a.reasons = append(a.reasons, fmt.Sprintf(format, args...))
}

func (a *accumulator) confidence() float64 {
	if a.total <= 0 {
		return 0
	}
	return fuzzy.Clamp(a.sum / a.total)
}

func (q *query) score(el *entity.SearchableElement) entity.SearchResult {
	var acc accumulator
	c := q.criteria

	if c.Text != "" {
		s, field := q.textScore(el)
		acc.add(s, q.weights.Text, &acc.scores.Text)
		switch {
		case s >= 1:
			acc.reason("text matches %q exactly", field)
		case s >= reasonMinimumScore:
			acc.reason("text similar to %q (%.2f)", field, s)
		}
	}

	if c.TextContains != "" {
		s, alt := q.containsScore(el)
		acc.add(s, q.weights.Text, &acc.scores.Contains)
		switch {
		case s >= containsExactScore:
			acc.reason("contains %q", alt)
		case s > 0:
			acc.reason("fuzzy contains %q", alt)
		}
	}

	if c.AccessibleName != "" || c.Placeholder != "" || c.Title != "" {
		s := q.accessibilityScore(el)
		acc.add(s, q.weights.Accessibility, &acc.scores.Accessibility)
		if s >= reasonMinimumScore {
			acc.reason("accessible name matches (%.2f)", s)
		}
	}

	if c.Role != "" {
		s := roleScore(el, c.Role)
		acc.add(s, q.weights.Role, &acc.scores.Role)
		switch {
		case s >= 1:
			acc.reason("role is %s", c.Role)
		case s > 0:
			acc.reason("implicit role of <%s> is %s", el.TagName, c.Role)
		}
	}

	switch {
	case c.Type != "":
		s := 0.0
		if strings.EqualFold(el.Type, strings.TrimSpace(c.Type)) {
			s = 1
			acc.reason("type is %s", c.Type)
		}
		acc.add(s, q.weights.Type, &acc.scores.Type)
	case c.TypeFamily != "":
		s := 0.0
		if InTypeFamily(el, c.TypeFamily) {
			s = 1
			acc.reason("type %s is a kind of %s", el.Type, c.TypeFamily)
		}
		acc.add(s, q.weights.Type, &acc.scores.Type)
	}

	if c.Near != "" && q.anchor != nil {
		s := q.spatialScore(el)
		acc.add(s, q.weights.Spatial, &acc.scores.Spatial)
		if s > 0 {
			acc.reason("near %q (%.2f)", q.anchor.ID, s)
		}
	}

	if c.IDPattern != "" {
		s := q.idScore(el.ID)
		acc.add(s, q.weights.IDPattern, &acc.scores.IDPattern)
		if s > 0 {
			acc.reason("id %q matches pattern %q", el.ID, c.IDPattern)
		}
	}

	if q.text != "" {
		s, matched := q.aliasScore(el)
		acc.add(s, q.weights.Alias, &acc.scores.Alias)
		switch {
		case s >= 1:
			acc.reason("alias %q", matched)
		case s >= synonymScore:
			acc.reason("synonym %q", matched)
		}
	}

	return entity.SearchResult{
		Element:      *el,
		Confidence:   acc.confidence(),
		MatchReasons: acc.reasons,
		Scores:       acc.scores,
	}
}

// textScore compares the query text with the element's text, label and value.
func (q *query) textScore(el *entity.SearchableElement) (float64, string) {
	want := norm(q.criteria.Text)
	fields := nonEmpty(el.Text, el.Label, el.Value)

	for _, f := range fields {
		if norm(f) == want {
			return 1, f
		}
	}
	if !q.useFuzzy {
		return 0, ""
	}

	best, bestField := 0.0, ""
	for _, f := range fields {
		s := max(
			fuzzy.CompositeMatch(q.criteria.Text, f, q.fuzzy).Similarity,
			fuzzy.WordSimilarity(q.criteria.Text, f, q.fuzzy),
		)
		if s > best {
			best, bestField = s, f
		}
	}
	return best, bestField
}

// containsScore treats "a|b|c" as alternatives and keeps the best one.
func (q *query) containsScore(el *entity.SearchableElement) (float64, string) {
	fields := nonEmpty(el.Text, el.Label, el.AccessibleName)

	best, bestAlt := 0.0, ""
	for _, alt := range strings.Split(q.criteria.TextContains, "|") {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		needle := norm(alt)
		for _, f := range fields {
			s := 0.0
			if strings.Contains(norm(f), needle) {
				s = containsExactScore
			} else if q.useFuzzy && fuzzy.ContainsFuzzy(f, alt) {
				s = containsFuzzyScore
			}
			if s > best {
				best, bestAlt = s, alt
			}
		}
	}
	return best, bestAlt
}

// accessibilityScore averages the accessible name, placeholder and title
// sub-scores that the criteria ask for.
func (q *query) accessibilityScore(el *entity.SearchableElement) float64 {
	var sum float64
	var n int

	if name := q.criteria.AccessibleName; name != "" {
		n++
		if el.AccessibleName != "" && norm(el.AccessibleName) == norm(name) {
			sum++
		} else {
			sum += q.bestOf(name, el.AccessibleName, el.Label, el.LabelledBy, el.LabelText, el.Title)
		}
	}
	if p := q.criteria.Placeholder; p != "" {
		n++
		sum += q.bestOf(p, el.Placeholder)
	}
	if t := q.criteria.Title; t != "" {
		n++
		sum += q.bestOf(t, el.Title)
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// bestOf is the best exact-or-fuzzy similarity of want against the fields.
func (q *query) bestOf(want string, fields ...string) float64 {
	best := 0.0
	for _, f := range nonEmpty(fields...) {
		if norm(f) == norm(want) {
			return 1
		}
		if q.useFuzzy {
			best = max(best, fuzzy.CompositeMatch(want, f, q.fuzzy).Similarity)
		}
	}
	return best
}

func roleScore(el *entity.SearchableElement, role string) float64 {
	if el.Role != "" && strings.EqualFold(el.Role, role) {
		return 1
	}
	if el.Role == "" && strings.EqualFold(alias.InferRole(el.TagName, el.Type), role) {
		return inferredRoleScore
	}
	return 0
}

// spatialScore decays linearly from 1 at the anchor's center to 0 at
// nearFalloffMultiple radii.
func (q *query) spatialScore(el *entity.SearchableElement) float64 {
	if el.State.Rect.IsZero() || q.anchor.State.Rect.IsZero() {
		return 0
	}
	d := entity.CenterDistance(el.State.Rect, q.anchor.State.Rect)
	return fuzzy.Clamp(1 - d/(nearFalloffMultiple*q.radius))
}

func (q *query) idScore(id string) float64 {
	if id == "" {
		return 0
	}
	if q.idRe != nil && q.idRe.MatchString(id) {
		return 1
	}
	if len(subseq.Find(q.criteria.IDPattern, []string{id})) > 0 {
		return idSubsequenceScore
	}
	return 0
}

func (q *query) aliasScore(el *entity.SearchableElement) (float64, string) {
	want := alias.NormalizeAlias(q.text)
	if want == "" {
		return 0, ""
	}

	for _, a := range el.Aliases {
		if a == want {
			return 1, a
		}
	}
	for _, a := range el.Aliases {
		if alias.AreSynonyms(want, a) {
			return synonymScore, a
		}
	}
	if !q.useFuzzy {
		return 0, ""
	}

	best, bestAlias := 0.0, ""
	for _, a := range el.Aliases {
		s := max(fuzzy.CompositeMatch(want, a, q.fuzzy).Similarity, fuzzy.TokenSimilarity(want, a))
		if s > best {
			best, bestAlias = s, a
		}
	}
	return best, bestAlias
}

var typeFamilies = map[string]string{
	"input":     "input",
	"textbox":   "input",
	"textarea":  "input",
	"searchbox": "input",
	"text":      "input",
	"email":     "input",
	"password":  "input",
	"search":    "input",
	"tel":       "input",
	"url":       "input",
	"number":    "input",
	"select":    "select",
	"combobox":  "select",
	"dropdown":  "select",
	"listbox":   "select",
	"checkbox":  "checkbox",
	"switch":    "checkbox",
	"a":         "link",
	"link":      "link",
}

// InTypeFamily reports whether the element's type or tag belongs to family.
func InTypeFamily(el *entity.SearchableElement, family string) bool {
	f := typeFamily(family)
	return typeFamily(el.Type) == f || typeFamily(el.TagName) == f
}

func typeFamily(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if f, ok := typeFamilies[t]; ok {
		return f
	}
	return t
}

func norm(s string) string {
	return fuzzy.Normalize(s, fuzzy.NormalizeOptions{})
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
