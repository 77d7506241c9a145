// Package htmldoc builds element records from static HTML, without a browser.
//
// There is no layout engine, so every rect is zero: geometry-based criteria
// (near, within) never match elements from a Document.
package htmldoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/alias"
	"intent-resolver/internal/domain/entity"

	"golang.org/x/net/html"
)

var _ output.ElementInventory = (*Document)(nil)

// Document is a parsed, immutable snapshot of a page's interactive elements.
type Document struct {
	elements []entity.Element
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	body := findElement(root, "body")
	if body == nil {
		return &Document{}, nil
	}
	newPruner(&DefaultCleanConfig).prune(body)

	x := newExtractor(body)
	x.walk(body, false, false)
	return &Document{elements: x.elements}, nil
}

func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func (d *Document) Elements(context.Context) ([]entity.Element, error) {
	out := make([]entity.Element, len(d.elements))
	copy(out, d.elements)
	return out, nil
}

func (d *Document) Len() int {
	return len(d.elements)
}

type extractor struct {
	byID     map[string]*html.Node
	labelFor map[string]string
	usedIDs  map[string]bool
	counter  int
	elements []entity.Element
}

func newExtractor(body *html.Node) *extractor {
	x := &extractor{
		byID:     make(map[string]*html.Node),
		labelFor: make(map[string]string),
		usedIDs:  make(map[string]bool),
	}
	x.index(body)
	return x
}

func (x *extractor) index(n *html.Node) {
	if n.Type == html.ElementNode {
		if id := attr(n, "id"); id != "" {
			if _, dup := x.byID[id]; !dup {
				x.byID[id] = n
			}
		}
		if n.Data == "label" {
			if target := attr(n, "for"); target != "" {
				x.labelFor[target] = textOf(n)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.index(c)
	}
}

// walk visits the tree in document order. hidden and disabled are inherited.
func (x *extractor) walk(n *html.Node, hidden, disabled bool) {
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			x.walk(c, hidden, disabled)
		}
		return
	}

	hidden = hidden || isHidden(n)
	disabled = disabled || (n.Data == "fieldset" && hasAttr(n, "disabled"))

	if isInteractive(n) {
		x.add(n, hidden, disabled)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		x.walk(c, hidden, disabled)
	}
}

func isInteractive(n *html.Node) bool {
	switch n.Data {
	case "button", "select", "textarea", "summary":
		return true
	case "a":
		return hasAttr(n, "href")
	case "input":
		return !strings.EqualFold(attr(n, "type"), "hidden")
	case "dialog":
		return true
	}
	if alias.IsInteractiveRole(attr(n, "role")) {
		return true
	}
	return hasAttr(n, "onclick") || attr(n, "contenteditable") == "true" || tabIndex(n) >= 0
}

func isHidden(n *html.Node) bool {
	if hasAttr(n, "hidden") || attr(n, "aria-hidden") == "true" {
		return true
	}
	if n.Data == "dialog" && !hasAttr(n, "open") {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func (x *extractor) add(n *html.Node, hidden, disabled bool) {
	tag := n.Data
	inputType := strings.ToLower(attr(n, "type"))
	if tag == "input" && inputType == "" {
		inputType = "text"
	}

	state := entity.ElementState{
		Visible: !hidden,
		Enabled: !disabled && !hasAttr(n, "disabled") && attr(n, "aria-disabled") != "true",
	}

	switch {
	case tag == "input" && (inputType == "checkbox" || inputType == "radio"):
		checked := hasAttr(n, "checked")
		state.Checked = &checked
		state.Value = attr(n, "value")
	case tag == "input":
		state.Value = attr(n, "value")
	case tag == "textarea":
		state.Value = textOf(n)
	case tag == "select":
		state.SelectedOptions = selectedOptions(n)
		if len(state.SelectedOptions) > 0 {
			state.Value = state.SelectedOptions[0]
		}
	default:
		state.TextContent = textOf(n)
		if c := attr(n, "aria-checked"); c != "" {
			checked := c == "true"
			state.Checked = &checked
		}
	}

	labelledBy := x.labelledBy(attr(n, "aria-labelledby"))
	labelText := x.labelText(n)
	ariaLabel := attr(n, "aria-label")

	el := entity.DiscoveredElement{
		ID:          x.elementID(n),
		Type:        elementType(n, inputType),
		TagName:     tag,
		Role:        strings.ToLower(attr(n, "role")),
		AriaLabel:   ariaLabel,
		LabelledBy:  labelledBy,
		LabelText:   labelText,
		Placeholder: attr(n, "placeholder"),
		Title:       attr(n, "title"),
		Name:        attr(n, "name"),
		Actions:     actionsFor(tag, inputType, attr(n, "role")),
		State:       state,
	}
	el.AccessibleName = firstNonEmpty(ariaLabel, labelledBy, labelText, state.TextContent, attr(n, "alt"), el.Title, el.Placeholder)

	x.elements = append(x.elements, entity.NewDiscovered(el))
}

func (x *extractor) elementID(n *html.Node) string {
	if id := attr(n, "id"); id != "" && !x.usedIDs[id] {
		x.usedIDs[id] = true
		return id
	}
	for {
		x.counter++
		id := fmt.Sprintf("el-%04d", x.counter)
		if !x.usedIDs[id] && x.byID[id] == nil {
			x.usedIDs[id] = true
			return id
		}
	}
}

func (x *extractor) labelledBy(ids string) string {
	var parts []string
	for _, id := range strings.Fields(ids) {
		if n, ok := x.byID[id]; ok {
			if t := textOf(n); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// labelText resolves <label for=id> first, then an enclosing <label>.
func (x *extractor) labelText(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		if t, ok := x.labelFor[id]; ok && t != "" {
			return t
		}
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "label" {
			return textExcluding(p, n)
		}
	}
	return ""
}

func elementType(n *html.Node, inputType string) string {
	switch n.Data {
	case "input":
		return inputType
	case "a":
		return "link"
	case "button", "select", "textarea", "dialog":
		return n.Data
	}
	if role := strings.ToLower(attr(n, "role")); role != "" {
		return role
	}
	return n.Data
}

func actionsFor(tag, inputType, role string) []string {
	switch {
	case tag == "select" || role == "listbox" || role == "combobox":
		return []string{"select", "click", "focus"}
	case tag == "textarea" || role == "textbox" || role == "searchbox":
		return []string{"type", "clear", "focus"}
	case tag == "input":
		switch inputType {
		case "checkbox", "radio":
			return []string{"check", "uncheck", "click"}
		case "submit", "button", "reset", "image":
			return []string{"click"}
		}
		return []string{"type", "clear", "focus"}
	case role == "checkbox" || role == "switch":
		return []string{"check", "uncheck", "click"}
	case tag == "dialog" || role == "dialog" || role == "alertdialog" || role == "progressbar":
		return nil
	}
	return []string{"click", "hover"}
}

func selectedOptions(sel *html.Node) []string {
	var selected []string
	var first string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "option" {
			text := textOf(n)
			if first == "" {
				first = text
			}
			if hasAttr(n, "selected") {
				selected = append(selected, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(sel)
	if len(selected) == 0 && first != "" && !hasAttr(sel, "multiple") {
		return []string{first}
	}
	return selected
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	return textExcluding(n, nil)
}

// textExcluding collects visible text under n, skipping the subtree skip
// and the values of form controls.
func textExcluding(n, skip *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(c *html.Node) {
		if c == skip {
			return
		}
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if c.Data == "select" && c != n {
				return
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			visit(cc)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// tabIndex returns the element's tabindex, or -1 when absent or invalid.
func tabIndex(n *html.Node) int {
	v, err := strconv.Atoi(attr(n, "tabindex"))
	if err != nil {
		return -1
	}
	return v
}
