package output

import "context"

// InstructionRewriter turns a free-form instruction into canonical phrasing
// the strict grammar understands. Used only after both parse tiers fail.
type InstructionRewriter interface {
	Rewrite(ctx context.Context, instruction string) (string, error)
}
