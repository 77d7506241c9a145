package nlparse

import (
	"regexp"

	"intent-resolver/internal/domain/entity"
)

// Rule pairs an instruction pattern with the action it produces.
// Group indexes refer to Pattern's capture groups; 0 means "not captured".
type Rule struct {
	Name       string
	Pattern    *regexp.Regexp
	Action     entity.ActionType
	Target     int
	Value      int
	Condition  int
	Modifiers  int
	Confidence float64
}

const (
	quote    = `["'‘’“”]`
	typeVerb = `(?:type|enter|input|write)`
	pickVerb = `(?:select|choose|pick)`
	modKey   = `(?:ctrl|control|shift|alt|option|meta|cmd|command)`
	into     = `(?:in|into|inside|on)`
	states   = `(visible|hidden|enabled|disabled|checked|unchecked|focused)`
)

func rx(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + pattern + `$`)
}

// DefaultRules are tried in order; the first match wins, so quoted and
// otherwise more specific phrasings come before their looser variants.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "type-quoted",
			Pattern: rx(typeVerb + `\s+` + quote + `(.*?)` + quote + `\s+` + into + `\s+(.+)`),
			Action:  entity.ActionTypeText, Target: 2, Value: 1, Confidence: 0.95,
		},
		{
			Name:    "fill-with",
			Pattern: rx(`(?:fill(?:\s+in|\s+out)?|populate)\s+(.+?)\s+with\s+` + quote + `?(.*?)` + quote + `?`),
			Action:  entity.ActionTypeText, Target: 1, Value: 2, Confidence: 0.9,
		},
		{
			Name:    "set-to",
			Pattern: rx(`set\s+(.+?)\s+to\s+` + quote + `?(.*?)` + quote + `?`),
			Action:  entity.ActionTypeText, Target: 1, Value: 2, Confidence: 0.85,
		},
		{
			Name:    "select-quoted",
			Pattern: rx(pickVerb + `\s+` + quote + `(.*?)` + quote + `\s+(?:from|in|on)\s+(.+)`),
			Action:  entity.ActionSelect, Target: 2, Value: 1, Confidence: 0.95,
		},
		{
			Name:    "select-unquoted",
			Pattern: rx(pickVerb + `\s+(.+?)\s+from\s+(.+)`),
			Action:  entity.ActionSelect, Target: 2, Value: 1, Confidence: 0.85,
		},
		{
			Name:    "type-unquoted",
			Pattern: rx(typeVerb + `\s+(.+?)\s+(?:in|into)\s+(.+)`),
			Action:  entity.ActionTypeText, Target: 2, Value: 1, Confidence: 0.8,
		},
		{
			Name:    "double-click",
			Pattern: rx(`double[\s-]?click\s+(?:on\s+)?(.+)`),
			Action:  entity.ActionDoubleClick, Target: 1, Confidence: 0.95,
		},
		{
			Name:    "right-click",
			Pattern: rx(`(?:right[\s-]?click|context[\s-]?click)\s+(?:on\s+)?(.+)`),
			Action:  entity.ActionRightClick, Target: 1, Confidence: 0.95,
		},
		{
			Name:    "modified-click",
			Pattern: rx(`(` + modKey + `(?:\s*[+-]\s*` + modKey + `)*)\s*[+-]?\s*click\s+(?:on\s+)?(.+)`),
			Action:  entity.ActionClick, Target: 2, Modifiers: 1, Confidence: 0.9,
		},
		{
			Name:    "assert-state",
			Pattern: rx(`(?:assert|verify|ensure|expect|check\s+that|confirm\s+that)\s+(?:that\s+)?(.+?)\s+(?:is|are|should\s+be|to\s+be)\s+` + states),
			Action:  entity.ActionAssert, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "assert-text",
			Pattern: rx(`(?:assert|verify|ensure|expect|check\s+that|confirm\s+that)\s+(?:that\s+)?(.+?)\s+(?:contains|has|should\s+contain|should\s+have)(?:\s+text)?\s+` + quote + `?(.*?)` + quote + `?`),
			Action:  entity.ActionAssert, Target: 1, Value: 2, Confidence: 0.9,
		},
		{
			Name:    "uncheck",
			Pattern: rx(`(?:uncheck|untick|deselect)\s+(.+)`),
			Action:  entity.ActionUncheck, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "check",
			Pattern: rx(`(?:check|tick)\s+(.+)`),
			Action:  entity.ActionCheck, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "clear",
			Pattern: rx(`(?:clear|empty|erase)\s+(?:out\s+)?(.+)`),
			Action:  entity.ActionClear, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "hover",
			Pattern: rx(`(?:hover|mouse\s*over)\s+(?:over\s+|on\s+)?(.+)`),
			Action:  entity.ActionHover, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "focus",
			Pattern: rx(`(?:focus|put\s+focus)\s+(?:on\s+)?(.+)`),
			Action:  entity.ActionFocus, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "scroll-direction",
			Pattern: rx(`scroll\s+(?:up|down|left|right)(?:\s+(?:in|on|within|inside)\s+(.+))?`),
			Action:  entity.ActionScroll, Target: 1, Confidence: 0.9,
		},
		{
			Name:    "scroll-element-direction",
			Pattern: rx(`scroll\s+(.+?)\s+(?:up|down|left|right)`),
			Action:  entity.ActionScroll, Target: 1, Confidence: 0.85,
		},
		{
			Name:    "scroll-into-view",
			Pattern: rx(`scroll\s+(.+?)\s+into\s+view`),
			Action:  entity.ActionScroll, Target: 1, Confidence: 0.85,
		},
		{
			Name:    "scroll-to",
			Pattern: rx(`scroll\s+(?:to|until|into\s+view\s+of)\s+(.+?)(?:\s+is\s+(?:in|into)\s+view)?`),
			Action:  entity.ActionScroll, Target: 1, Confidence: 0.85,
		},
		{
			Name:    "wait-condition",
			Pattern: rx(`wait\s+(?:for\s+|until\s+)?(.+?)\s+(?:to\s+(?:be\s+|become\s+)?|is\s+|becomes\s+)(.+)`),
			Action:  entity.ActionWait, Target: 1, Condition: 2, Confidence: 0.85,
		},
		{
			Name:    "wait",
			Pattern: rx(`wait\s+(?:for\s+|until\s+)?(.+)`),
			Action:  entity.ActionWait, Target: 1, Confidence: 0.8,
		},
		{
			Name:    "click",
			Pattern: rx(`(?:click|press|tap|hit)\s+(?:on\s+)?(.+)`),
			Action:  entity.ActionClick, Target: 1, Confidence: 0.95,
		},
	}
}
