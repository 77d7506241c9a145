package htmldoc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const truncatedMarker = "\n<!-- truncated -->"

// CleanConfig controls the pruning pass that runs before elements are read.
type CleanConfig struct {
	// DropTags are removed together with their subtree.
	DropTags []string
	// DropAttrs are removed from every element. Event handlers other than
	// onclick are always dropped: onclick marks custom controls.
	DropAttrs []string
	// MaxOutputSize caps CleanHTML output in bytes. Zero disables the cap.
	MaxOutputSize int
}

// DefaultCleanConfig keeps style, tabindex, aria-* and data-*: extraction
// reads visibility, focusability and accessible names from them.
var DefaultCleanConfig = CleanConfig{
	DropTags: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "template",
	},
	DropAttrs:     []string{"srcset", "sizes", "loading", "decoding", "fetchpriority"},
	MaxOutputSize: 130_000,
}

type pruner struct {
	dropTags  map[string]bool
	dropAttrs map[string]bool
}

func newPruner(cfg *CleanConfig) *pruner {
	p := &pruner{
		dropTags:  make(map[string]bool, len(cfg.DropTags)),
		dropAttrs: make(map[string]bool, len(cfg.DropAttrs)),
	}
	for _, t := range cfg.DropTags {
		p.dropTags[t] = true
	}
	for _, a := range cfg.DropAttrs {
		p.dropAttrs[a] = true
	}
	return p
}

// prune removes comments and dropped tags below n and filters the attributes
// of n and every kept descendant, in place.
func (p *pruner) prune(n *html.Node) {
	if n.Type == html.ElementNode {
		n.Attr = p.keepAttrs(n.Attr)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && p.dropTags[c.Data]:
			n.RemoveChild(c)
		default:
			p.prune(c)
		}
		c = next
	}
}

func (p *pruner) keepAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if p.dropAttrs[a.Key] || (strings.HasPrefix(a.Key, "on") && a.Key != "onclick") {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// CleanHTML renders the <body> exactly as element extraction sees it.
func CleanHTML(rawHTML string, cfg *CleanConfig) (string, error) {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	body := findElement(root, "body")
	if body == nil {
		return "", nil
	}
	newPruner(cfg).prune(body)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return truncate(sb.String(), cfg.MaxOutputSize), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMarker
}
