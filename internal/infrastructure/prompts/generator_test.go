package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRewritePrompt(t *testing.T) {
	prompt, err := GenerateRewritePrompt(RewritePrompt, []string{"Submit", "Email", "Submit", ""})
	require.NoError(t, err)

	assert.Contains(t, prompt, `type "<text>" into "<target>"`)
	assert.Contains(t, prompt, "Elements currently on the page:")
	assert.Equal(t, 1, strings.Count(prompt, "- Submit\n"))
	assert.Less(t, strings.Index(prompt, "- Email"), strings.Index(prompt, "- Submit"), "sorted")
	assert.Contains(t, prompt, "reply with: "+Unsupported)
}

func TestGenerateRewritePrompt_NoElements(t *testing.T) {
	prompt, err := GenerateRewritePrompt(RewritePrompt, nil)
	require.NoError(t, err)

	assert.NotContains(t, prompt, "Elements currently on the page")
	assert.NotContains(t, prompt, "{{")
}

func TestGenerateRewritePrompt_CapsElements(t *testing.T) {
	var names []string
	for i := 0; i < maxPromptElements+10; i++ {
		names = append(names, fmt.Sprintf("Button %03d", i))
	}

	prompt, err := GenerateRewritePrompt("{{range .Elements}}{{.}}\n{{end}}", names)
	require.NoError(t, err)
	assert.Equal(t, maxPromptElements, strings.Count(prompt, "Button"))
}

func TestGenerateRewritePrompt_InvalidTemplate(t *testing.T) {
	_, err := GenerateRewritePrompt("{{.Missing", nil)
	assert.Error(t, err)
}
