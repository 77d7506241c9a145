package prompts

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"
)

const maxPromptElements = 50

type RewritePromptData struct {
	Elements    []string
	Unsupported string
}

// GenerateRewritePrompt renders the rewrite system prompt. Element names are
// deduplicated, sorted and capped at maxPromptElements.
func GenerateRewritePrompt(baseTemplate string, elements []string) (string, error) {
	seen := make(map[string]bool, len(elements))
	names := make([]string, 0, len(elements))
	for _, e := range elements {
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		names = append(names, e)
	}
	sort.Strings(names)
	if len(names) > maxPromptElements {
		names = names[:maxPromptElements]
	}

	data := RewritePromptData{
		Elements:    names,
		Unsupported: Unsupported,
	}

	tmpl, err := template.New("rewrite").Parse(baseTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return buf.String(), nil
}
