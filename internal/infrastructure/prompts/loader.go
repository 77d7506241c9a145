package prompts

import (
	_ "embed"
)

//go:embed rewrite.txt
var RewritePrompt string

// Unsupported is what the model answers when no command fits.
const Unsupported = "UNSUPPORTED"
