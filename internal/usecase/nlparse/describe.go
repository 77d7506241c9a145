package nlparse

import (
	"fmt"
	"strings"

	"intent-resolver/internal/domain/entity"
)

// DescribeAction renders a short human sentence for logs and responses.
func DescribeAction(a *entity.ParsedAction) string {
	if a == nil {
		return ""
	}
	t := a.TargetDescription

	switch a.Action {
	case entity.ActionClick:
		if len(a.Modifiers) > 0 {
			return fmt.Sprintf("%s+Click on %q", strings.Join(a.Modifiers, "+"), t)
		}
		return fmt.Sprintf("Click on %q", t)
	case entity.ActionDoubleClick:
		return fmt.Sprintf("Double-click on %q", t)
	case entity.ActionRightClick:
		return fmt.Sprintf("Right-click on %q", t)
	case entity.ActionTypeText:
		return fmt.Sprintf("Type %q into %q", a.Value, t)
	case entity.ActionSelect:
		return fmt.Sprintf("Select %q from %q", a.Value, t)
	case entity.ActionCheck:
		return fmt.Sprintf("Check %q", t)
	case entity.ActionUncheck:
		return fmt.Sprintf("Uncheck %q", t)
	case entity.ActionClear:
		return fmt.Sprintf("Clear %q", t)
	case entity.ActionHover:
		return fmt.Sprintf("Hover over %q", t)
	case entity.ActionFocus:
		return fmt.Sprintf("Focus %q", t)
	case entity.ActionScroll:
		switch {
		case a.ScrollDirection != "" && t != "":
			return fmt.Sprintf("Scroll %s in %q", a.ScrollDirection, t)
		case a.ScrollDirection != "":
			return fmt.Sprintf("Scroll %s", a.ScrollDirection)
		default:
			return fmt.Sprintf("Scroll to %q", t)
		}
	case entity.ActionWait:
		if a.WaitCondition != "" {
			return fmt.Sprintf("Wait for %q (%s)", t, a.WaitCondition)
		}
		return fmt.Sprintf("Wait for %q", t)
	case entity.ActionAssert:
		switch a.AssertionType {
		case entity.AssertContainsText:
			return fmt.Sprintf("Assert %q contains %q", t, a.Value)
		case entity.AssertHasText:
			return fmt.Sprintf("Assert %q has text %q", t, a.Value)
		default:
			return fmt.Sprintf("Assert %q is %s", t, a.AssertionType)
		}
	}
	return fmt.Sprintf("%s %q", a.Action, t)
}
