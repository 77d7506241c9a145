package nlparse

import (
	"regexp"
	"strings"
)

var (
	separator  = regexp.MustCompile(`(?i)\s*(?:,\s*(?:and\s+then|and|then)?|;|\band\s+then\b|\bthen\b|\band\b)\s*`)
	quotedSpan = regexp.MustCompile(`"[^"]*"|'[^']*'|“[^”]*”|‘[^’]*’`)
)

var actionStarters = map[string]bool{
	"click": true, "double-click": true, "doubleclick": true, "double": true, "right-click": true,
	"rightclick": true, "right": true, "press": true, "tap": true, "hit": true,
	"type": true, "enter": true, "input": true, "write": true, "fill": true, "populate": true, "set": true,
	"select": true, "choose": true, "pick": true,
	"check": true, "tick": true, "uncheck": true, "untick": true, "deselect": true,
	"clear": true, "empty": true, "erase": true,
	"hover": true, "mouseover": true, "mouse": true, "focus": true,
	"scroll": true, "wait": true,
	"assert": true, "verify": true, "ensure": true, "expect": true,
	"ctrl": true, "shift": true, "alt": true, "meta": true, "cmd": true,
}

// SplitCompoundInstruction splits "X and Y", "X then Y", "X, Y" and "X; Y"
// into separate instructions. A separator only splits when the text after
// it starts with an action verb, so "click Terms and Conditions" stays whole.
// Separators inside quotes are ignored.
func SplitCompoundInstruction(instruction string) []string {
	text := strings.TrimSpace(instruction)
	if text == "" {
		return nil
	}

	masked := []byte(text)
	for _, span := range quotedSpan.FindAllStringIndex(text, -1) {
		for i := span[0]; i < span[1]; i++ {
			masked[i] = 'x'
		}
	}

	var parts []string
	start := 0
	for _, sep := range separator.FindAllStringIndex(string(masked), -1) {
		if sep[0] <= start {
			continue
		}
		if !startsWithAction(text[sep[1]:]) {
			continue
		}
		if part := strings.TrimSpace(text[start:sep[0]]); part != "" {
			parts = append(parts, part)
		}
		start = sep[1]
	}
	if last := strings.TrimSpace(text[start:]); last != "" {
		parts = append(parts, last)
	}
	return parts
}

func startsWithAction(s string) bool {
	ws := words(s)
	return len(ws) > 0 && actionStarters[ws[0]]
}
