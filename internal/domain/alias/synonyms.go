package alias

import "strings"

type synonymGroup struct {
	triggers []string
	all      []string
}

var synonymGroups = []synonymGroup{
	{[]string{"submit", "send", "go"}, []string{"submit", "send", "go", "confirm"}},
	{[]string{"sign in", "signin", "log in", "login"}, []string{"sign in", "signin", "log in", "login", "authenticate"}},
	{[]string{"sign up", "signup", "register", "create account"}, []string{"sign up", "signup", "register", "create account", "join"}},
	{[]string{"sign out", "signout", "log out", "logout"}, []string{"sign out", "signout", "log out", "logout", "exit"}},
	{[]string{"cancel", "close", "dismiss", "x"}, []string{"cancel", "close", "dismiss", "exit", "abort"}},
	{[]string{"save", "store", "keep"}, []string{"save", "store", "keep", "persist", "apply"}},
	{[]string{"delete", "remove", "trash"}, []string{"delete", "remove", "trash", "discard", "erase"}},
	{[]string{"edit", "modify", "change", "update"}, []string{"edit", "modify", "change", "update", "alter"}},
	{[]string{"search", "find", "lookup"}, []string{"search", "find", "lookup", "query", "filter"}},
	{[]string{"next", "continue", "proceed", "forward"}, []string{"next", "continue", "proceed", "forward", "advance"}},
	{[]string{"back", "previous", "prev", "return"}, []string{"back", "previous", "prev", "return", "go back"}},
	{[]string{"start", "begin", "launch", "run"}, []string{"start", "begin", "launch", "run", "execute", "initiate"}},
	{[]string{"stop", "end", "halt", "pause"}, []string{"stop", "end", "halt", "pause", "terminate"}},
	{[]string{"add", "create", "new", "plus"}, []string{"add", "create", "new", "plus", "insert"}},
	{[]string{"download", "export", "save as"}, []string{"download", "export", "save as", "get"}},
	{[]string{"upload", "import", "attach"}, []string{"upload", "import", "attach", "add file"}},
	{[]string{"confirm", "ok", "okay", "yes", "accept"}, []string{"confirm", "ok", "okay", "yes", "accept", "agree"}},
	{[]string{"deny", "no", "reject", "decline"}, []string{"deny", "no", "reject", "decline", "refuse"}},
	{[]string{"help", "support", "info", "information"}, []string{"help", "support", "info", "information", "faq"}},
	{[]string{"settings", "preferences", "options", "config"}, []string{"settings", "preferences", "options", "config", "configure"}},
	{[]string{"profile", "account", "user"}, []string{"profile", "account", "user", "my account"}},
	{[]string{"home", "main", "dashboard"}, []string{"home", "main", "dashboard", "start page"}},
	{[]string{"menu", "navigation", "nav"}, []string{"menu", "navigation", "nav", "hamburger"}},
	{[]string{"refresh", "reload"}, []string{"refresh", "reload", "update", "sync"}},
	{[]string{"copy", "duplicate", "clone"}, []string{"copy", "duplicate", "clone", "replicate"}},
	{[]string{"paste"}, []string{"paste", "insert", "put"}},
	{[]string{"share", "send to"}, []string{"share", "send to", "forward", "distribute"}},
	{[]string{"view", "show", "display", "see"}, []string{"view", "show", "display", "see", "reveal"}},
	{[]string{"hide", "conceal"}, []string{"hide", "conceal", "collapse", "minimize"}},
	{[]string{"expand", "more", "show more"}, []string{"expand", "more", "show more", "details", "see all"}},
	{[]string{"collapse", "less", "show less"}, []string{"collapse", "less", "show less", "hide details"}},
}

// Synonyms returns the synonyms of the first group whose trigger appears in
// text as a whole word or phrase. text itself is never included.
func Synonyms(text string) []string {
	text = NormalizeAlias(text)
	if text == "" {
		return nil
	}

	for _, g := range synonymGroups {
		if !anyPhraseIn(text, g.triggers) {
			continue
		}
		out := make([]string, 0, len(g.all))
		for _, s := range g.all {
			if s != text {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// AreSynonyms reports whether a and b are distinct entries of one synonym group.
func AreSynonyms(a, b string) bool {
	a, b = NormalizeAlias(a), NormalizeAlias(b)
	if a == "" || b == "" || a == b {
		return false
	}
	for _, g := range synonymGroups {
		if contains(g.all, a) && contains(g.all, b) {
			return true
		}
	}
	return false
}

func anyPhraseIn(text string, phrases []string) bool {
	padded := " " + text + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
