package output

import (
	"context"
	"time"

	"intent-resolver/internal/domain/entity"
)

// ActionRequest is what the executor hands to a backend for one resolved element.
type ActionRequest struct {
	RequestID       string
	Action          entity.ActionType
	Value           string
	Modifiers       []string
	ScrollDirection entity.ScrollDirection
	Timeout         time.Duration
}

type ActionResult struct {
	Success      bool
	ElementState *entity.ElementState
	Error        string
}

type WaitOptions struct {
	Condition string
	Timeout   time.Duration
}

type WaitResult struct {
	Met   bool
	State *entity.ElementState
	Error string
}

// ActionBackend performs resolved actions against a real (or simulated) UI.
// An empty elementID is valid for page-level scrolls.
type ActionBackend interface {
	ExecuteAction(ctx context.Context, elementID string, req ActionRequest) (*ActionResult, error)
	WaitFor(ctx context.Context, elementID string, opts WaitOptions) (*WaitResult, error)
}

// ElementInventory supplies the current element set.
type ElementInventory interface {
	Elements(ctx context.Context) ([]entity.Element, error)
}

type ScreenshotPort interface {
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
}
