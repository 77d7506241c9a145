// Package nlparse turns free-text UI instructions into structured actions.
//
// Parsing is two-tiered: an ordered table of strict rules handles common
// phrasings with high confidence, and a keyword fallback recovers a
// lower-confidence parse for click and type instructions. Anything else is
// reported as ErrNoMatch rather than guessed.
package nlparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"intent-resolver/internal/domain/entity"
)

var (
	ErrEmptyInstruction = errors.New("instruction is empty")
	ErrNoMatch          = errors.New("instruction not understood")
	ErrInvalidAction    = errors.New("invalid parsed action")
)

const (
	MinConfidence = 0.5

	fallbackClickConfidence = 0.6
	fallbackTypeConfidence  = 0.55
)

// Parser is stateless after construction and safe for concurrent use.
type Parser struct {
	rules []Rule
}

func New() *Parser {
	return &Parser{rules: DefaultRules()}
}

// NewWithRules builds a parser over a custom ordered rule table.
func NewWithRules(rules []Rule) *Parser {
	return &Parser{rules: append([]Rule(nil), rules...)}
}

func (p *Parser) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

var defaultParser = New()

// ParseInstruction parses with the default rule table.
func ParseInstruction(instruction string) (*entity.ParsedAction, error) {
	return defaultParser.Parse(instruction)
}

func (p *Parser) Parse(instruction string) (*entity.ParsedAction, error) {
	return p.parse(instruction, true)
}

// ParseStrict uses the rule table only, without the keyword fallback.
func (p *Parser) ParseStrict(instruction string) (*entity.ParsedAction, error) {
	return p.parse(instruction, false)
}

func (p *Parser) parse(instruction string, fallback bool) (*entity.ParsedAction, error) {
	text := prepare(instruction)
	if text == "" {
		return nil, ErrEmptyInstruction
	}

	for _, r := range p.rules {
		m := r.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return r.build(m, text, instruction), nil
	}

	if fallback {
		if a := infer(text, instruction); a != nil {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoMatch, instruction)
}

func (r Rule) build(m []string, text, raw string) *entity.ParsedAction {
	group := func(i int) string {
		if i <= 0 || i >= len(m) {
			return ""
		}
		return strings.TrimSpace(m[i])
	}

	a := &entity.ParsedAction{
		Action:            r.Action,
		TargetDescription: CleanTarget(group(r.Target)),
		Value:             group(r.Value),
		RawInstruction:    raw,
		Confidence:        r.Confidence,
	}

	if r.Modifiers > 0 {
		a.Modifiers = parseModifiers(group(r.Modifiers))
	}

	switch r.Action {
	case entity.ActionScroll:
		rest := text
		if t := group(r.Target); t != "" {
			rest = strings.Replace(text, t, " ", 1)
		}
		a.ScrollDirection = scrollDirection(rest)
	case entity.ActionAssert:
		a.AssertionType = assertionType(strings.Replace(text, a.Value, " ", 1))
		if a.AssertionType != entity.AssertContainsText && a.AssertionType != entity.AssertHasText {
			a.Value = ""
		}
	case entity.ActionWait:
		a.WaitCondition = group(r.Condition)
	}

	return a
}

var (
	leadingArticles = regexp.MustCompile(`(?i)^(?:(?:the|a|an)\s+)+`)
	trailingType    = regexp.MustCompile(`(?i)\s+(?:button|field|input|link|dropdown|checkbox|radio)$`)
	surroundQuotes  = regexp.MustCompile(`^` + quote + `(.*)` + quote + `$`)
)

// CleanTarget strips quotes, leading articles and one trailing element-type
// word. A target that consists only of a type word is kept as is.
func CleanTarget(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if m := surroundQuotes.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = leadingArticles.ReplaceAllString(s, "")
	if stripped := trailingType.ReplaceAllString(s, ""); stripped != "" {
		s = stripped
	}
	if m := surroundQuotes.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	return s
}

func prepare(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".!;")
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
}

// scrollDirection expects the target already cut out of text, so that
// "scroll to the Sign up button" carries no direction.
func scrollDirection(text string) entity.ScrollDirection {
	for _, w := range words(text) {
		switch w {
		case "up":
			return entity.ScrollUp
		case "down":
			return entity.ScrollDown
		case "left":
			return entity.ScrollLeft
		case "right":
			return entity.ScrollRight
		}
	}
	return ""
}

var assertionWords = map[string]entity.AssertionType{
	"visible":   entity.AssertVisible,
	"hidden":    entity.AssertHidden,
	"enabled":   entity.AssertEnabled,
	"disabled":  entity.AssertDisabled,
	"checked":   entity.AssertChecked,
	"unchecked": entity.AssertUnchecked,
	"focused":   entity.AssertFocused,
	"contains":  entity.AssertContainsText,
	"contain":   entity.AssertContainsText,
	"has":       entity.AssertHasText,
	"have":      entity.AssertHasText,
}

// assertionType takes the last assertion keyword so that target names such
// as "Visible columns" do not win over the trailing state.
func assertionType(text string) entity.AssertionType {
	ws := words(text)
	for i := len(ws) - 1; i >= 0; i-- {
		if t, ok := assertionWords[ws[i]]; ok {
			return t
		}
	}
	return ""
}

var modifierNames = map[string]string{
	"ctrl":    "Control",
	"control": "Control",
	"shift":   "Shift",
	"alt":     "Alt",
	"option":  "Alt",
	"meta":    "Meta",
	"cmd":     "Meta",
	"command": "Meta",
}

func parseModifiers(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '+' || r == '-' || r == ' '
	}) {
		if name, ok := modifierNames[w]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

var (
	clickKeywords = map[string]bool{"click": true, "press": true, "tap": true, "hit": true, "push": true}
	typeKeywords  = map[string]bool{"type": true, "enter": true, "input": true, "write": true, "fill": true}
	fillerWords   = map[string]bool{
		"please": true, "can": true, "could": true, "would": true, "you": true, "kindly": true,
		"just": true, "now": true, "then": true, "go": true, "ahead": true, "and": true,
		"on": true, "in": true, "into": true, "at": true, "to": true, "inside": true,
		"the": true, "a": true, "an": true, "i": true, "want": true, "need": true, "me": true,
		"for": true, "with": true,
	}
	quotedValue = regexp.MustCompile(quote + `([^"'‘’“”]*)` + quote)
)

// infer is the keyword fallback tier.
func infer(text, raw string) *entity.ParsedAction {
	value := ""
	rest := text
	if m := quotedValue.FindStringSubmatchIndex(text); m != nil {
		value = text[m[2]:m[3]]
		rest = text[:m[0]] + " " + text[m[1]:]
	}

	var action entity.ActionType
	var confidence float64
	var kept []string
	for _, w := range strings.Fields(rest) {
		lw := strings.ToLower(strings.Trim(w, ",:"))
		switch {
		case action == "" && clickKeywords[lw]:
			action, confidence = entity.ActionClick, fallbackClickConfidence
		case action == "" && typeKeywords[lw]:
			action, confidence = entity.ActionTypeText, fallbackTypeConfidence
		case fillerWords[lw] || clickKeywords[lw] || typeKeywords[lw]:
		default:
			kept = append(kept, strings.Trim(w, ",:"))
		}
	}

	if action == "" {
		return nil
	}
	target := CleanTarget(strings.Join(kept, " "))
	if target == "" {
		return nil
	}

	a := &entity.ParsedAction{
		Action:            action,
		TargetDescription: target,
		RawInstruction:    raw,
		Confidence:        confidence,
	}
	if action == entity.ActionTypeText {
		a.Value = value
	}
	return a
}
