// Package alias derives human-readable labels, alias lists and descriptions
// from element attributes so that natural-language queries can reach
// elements whose visible text differs from the words a user would say.
package alias

import (
	"strings"
	"unicode"

	"intent-resolver/internal/domain/fuzzy"
)

const (
	DefaultMaxAliases = 10
	maxLabelLength    = 60
)

// Fields are the element attributes alias inference looks at.
type Fields struct {
	ID          string
	TagName     string
	Type        string
	Role        string
	Text        string
	AriaLabel   string
	LabelText   string
	Placeholder string
	Title       string
	Name        string
}

type Inference struct {
	Label       string
	Aliases     []string
	Description string
}

// genericIDTokens are dropped when turning an id like "submit-btn" into an alias.
var genericIDTokens = map[string]bool{
	"btn": true, "button": true, "input": true, "field": true, "link": true,
	"el": true, "elem": true, "element": true, "ui": true, "id": true,
	"txt": true, "text": true, "box": true, "lbl": true, "label": true,
	"chk": true, "cb": true, "select": true, "dd": true,
}

// Infer builds the label, alias list and description of one element.
// Aliases are ordered text, text synonyms, aria-label, label text,
// placeholder, title, name, id tokens; duplicates are removed and the
// list is capped at maxAliases (DefaultMaxAliases when <= 0).
func Infer(f Fields, maxAliases int) Inference {
	if maxAliases <= 0 {
		maxAliases = DefaultMaxAliases
	}

	var aliases []string
	add := func(s string) {
		n := NormalizeAlias(s)
		if n != "" && !contains(aliases, n) {
			aliases = append(aliases, n)
		}
	}

	if text := NormalizeAlias(f.Text); text != "" {
		add(text)
		for _, syn := range Synonyms(text) {
			add(syn)
		}
	}
	add(f.AriaLabel)
	add(f.LabelText)
	add(f.Placeholder)
	add(f.Title)
	add(f.Name)
	add(idPhrase(f.ID))

	if len(aliases) > maxAliases {
		aliases = aliases[:maxAliases]
	}

	label := HumanLabel(f)
	return Inference{
		Label:       label,
		Aliases:     aliases,
		Description: describe(label, TypeNoun(f.Type, f.Role, f.TagName)),
	}
}

// HumanLabel picks the most descriptive text an element offers.
func HumanLabel(f Fields) string {
	for _, s := range []string{f.AriaLabel, f.LabelText, f.Text, f.Placeholder, f.Title, f.Name} {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		if r := []rune(s); len(r) > maxLabelLength {
			s = string(r[:maxLabelLength]) + "…"
		}
		return s
	}
	return idPhrase(f.ID)
}

func describe(label, noun string) string {
	if label == "" {
		return noun
	}
	if strings.EqualFold(label, noun) || strings.HasSuffix(strings.ToLower(label), " "+noun) {
		return label
	}
	return label + " " + noun
}

// NormalizeAlias lower-cases s, keeps letters, digits and spaces, and collapses whitespace.
func NormalizeAlias(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func idPhrase(id string) string {
	var words []string
	for _, tok := range fuzzy.Tokenize(id) {
		if genericIDTokens[tok] || isNumber(tok) {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
