package nlparse

import (
	"fmt"
	"strings"

	"intent-resolver/internal/domain/entity"
)

// ValidateParsedAction checks that a parsed action carries what its verb
// needs. Errors wrap ErrInvalidAction.
func ValidateParsedAction(a *entity.ParsedAction) error {
	if a == nil {
		return fmt.Errorf("%w: no action", ErrInvalidAction)
	}

	target := strings.TrimSpace(a.TargetDescription)
	switch a.Action {
	case entity.ActionScroll:
		if target == "" && a.ScrollDirection == "" {
			return fmt.Errorf("%w: scroll needs a target or a direction", ErrInvalidAction)
		}
	case entity.ActionClick, entity.ActionDoubleClick, entity.ActionRightClick,
		entity.ActionTypeText, entity.ActionSelect, entity.ActionCheck, entity.ActionUncheck,
		entity.ActionClear, entity.ActionHover, entity.ActionFocus, entity.ActionWait, entity.ActionAssert:
		if target == "" {
			return fmt.Errorf("%w: %s needs a target element", ErrInvalidAction, a.Action)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidAction, a.Action)
	}

	if (a.Action == entity.ActionTypeText || a.Action == entity.ActionSelect) && a.Value == "" {
		return fmt.Errorf("%w: %s needs a value", ErrInvalidAction, a.Action)
	}
	if a.Action == entity.ActionAssert && a.AssertionType == "" {
		return fmt.Errorf("%w: assert needs an assertion type", ErrInvalidAction)
	}
	if a.Confidence < MinConfidence {
		return fmt.Errorf("%w: parse confidence %.2f is below %.2f", ErrInvalidAction, a.Confidence, MinConfidence)
	}
	return nil
}
