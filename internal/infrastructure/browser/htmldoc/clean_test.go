package htmldoc

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML_RemovesScriptStyleAndComments(t *testing.T) {
	out, err := CleanHTML(`
<body>
	<!-- comment -->
	<div id="main">Hello</div>
	<script>alert("hi")</script>
	<style>.x {}</style>
</body>`, nil)
	require.NoError(t, err)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.NotContains(t, out, "comment")
	assert.Contains(t, out, `id="main"`)
}

func TestCleanHTML_Attributes(t *testing.T) {
	out, err := CleanHTML(`<body>
	<a href="/x" class="link" aria-label="Go" data-x="1" onmouseover="f()" onclick="g()">Go</a>
	<img src="a.png" srcset="a2.png 2x" loading="lazy" />
</body>`, nil)
	require.NoError(t, err)

	for _, kept := range []string{`href="/x"`, `class="link"`, `aria-label="Go"`, `data-x="1"`, `onclick="g()"`, `src="a.png"`} {
		assert.Contains(t, out, kept)
	}
	for _, dropped := range []string{"onmouseover", "srcset", "loading"} {
		assert.NotContains(t, out, dropped)
	}
}

func TestCleanHTML_Truncation(t *testing.T) {
	cfg := DefaultCleanConfig
	cfg.MaxOutputSize = 50

	out, err := CleanHTML("<body><p>"+strings.Repeat("a", 500)+"</p></body>", &cfg)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "<!-- truncated -->"))
	assert.Less(t, len(out), 100)
}

func TestCleanHTML_TruncationKeepsRunes(t *testing.T) {
	cfg := DefaultCleanConfig
	cfg.MaxOutputSize = 20

	// "<body><p>" is 9 bytes, so byte 20 falls inside the 6th "ж".
	out, err := CleanHTML("<body><p>"+strings.Repeat("ж", 40)+"</p></body>", &cfg)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, truncatedMarker))
	assert.LessOrEqual(t, len(strings.TrimSuffix(out, truncatedMarker)), 20)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"no limit", "héllo", 0, "héllo"},
		{"fits", "héllo", 6, "héllo"},
		{"ascii cut", "hello", 3, "hel" + truncatedMarker},
		{"backs off to rune start", "héllo", 2, "h" + truncatedMarker},
		{"cut after rune", "héllo", 3, "hé" + truncatedMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.limit))
		})
	}
}

func TestParse_PrunesBeforeExtraction(t *testing.T) {
	doc, err := ParseString(`<body>
	<template><button id="tpl">Template button</button></template>
	<div id="custom" onclick="go()" onmouseover="hint()">Custom</div>
	<button id="real">Real</button>
</body>`)
	require.NoError(t, err)

	elements, err := doc.Elements(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, el := range elements {
		ids = append(ids, el.Discovered.ID)
	}
	assert.Equal(t, []string{"custom", "real"}, ids)
}
