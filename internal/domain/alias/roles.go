package alias

import "strings"

var tagRoles = map[string]string{
	"a":        "link",
	"button":   "button",
	"select":   "combobox",
	"textarea": "textbox",
	"img":      "img",
	"nav":      "navigation",
	"dialog":   "dialog",
	"form":     "form",
	"ul":       "list",
	"ol":       "list",
	"li":       "listitem",
	"table":    "table",
	"tr":       "row",
	"td":       "cell",
	"option":   "option",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"main":     "main",
	"header":   "banner",
	"footer":   "contentinfo",
	"aside":    "complementary",
	"progress": "progressbar",
}

var inputTypeRoles = map[string]string{
	"checkbox": "checkbox",
	"radio":    "radio",
	"button":   "button",
	"submit":   "button",
	"reset":    "button",
	"image":    "button",
	"range":    "slider",
	"search":   "searchbox",
	"number":   "spinbutton",
}

// InferRole maps an HTML tag (and, for <input>, its type attribute) to the
// implicit ARIA role. It returns "" when the tag has no implicit role.
func InferRole(tagName, inputType string) string {
	tag := strings.ToLower(tagName)
	if tag == "input" {
		if role, ok := inputTypeRoles[strings.ToLower(inputType)]; ok {
			return role
		}
		return "textbox"
	}
	return tagRoles[tag]
}

var typeNouns = map[string]string{
	"button":   "button",
	"link":     "link",
	"a":        "link",
	"input":    "input",
	"textbox":  "input",
	"textarea": "text area",
	"checkbox": "checkbox",
	"radio":    "radio button",
	"select":   "dropdown",
	"combobox": "dropdown",
	"menuitem": "menu item",
	"tab":      "tab",
	"dialog":   "dialog",
	"img":      "image",
	"heading":  "heading",
	"slider":   "slider",
	"switch":   "switch",
}

// TypeNoun is the human word used in descriptions ("Email input", "Submit button").
func TypeNoun(elementType, role, tagName string) string {
	for _, k := range []string{role, elementType, tagName} {
		if n, ok := typeNouns[strings.ToLower(k)]; ok {
			return n
		}
	}
	return "element"
}

// IsBlockingRole reports roles that usually cover the page and intercept input.
func IsBlockingRole(role string) bool {
	switch strings.ToLower(role) {
	case "dialog", "alertdialog":
		return true
	}
	return false
}

var interactiveRoles = map[string]bool{
	"button": true, "link": true, "checkbox": true, "radio": true, "switch": true,
	"tab": true, "menuitem": true, "textbox": true, "searchbox": true, "combobox": true,
	"listbox": true, "option": true, "slider": true, "spinbutton": true,
	"dialog": true, "alertdialog": true, "progressbar": true,
}

// IsInteractiveRole reports roles worth indexing: controls, plus the dialogs
// and progress indicators that can block them.
func IsInteractiveRole(role string) bool {
	return interactiveRoles[strings.ToLower(strings.TrimSpace(role))]
}
