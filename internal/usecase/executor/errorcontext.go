package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"intent-resolver/internal/domain/alias"
	"intent-resolver/internal/domain/entity"
)

const (
	blockerDialog  = "dialog"
	blockerLoading = "loading"
)

// GetErrorContext builds diagnostics for a failed response against the
// current element index, with a screenshot when capture is enabled.
func (uc *UseCase) GetErrorContext(ctx context.Context, instruction string, resp *entity.ActionResponse) *entity.ErrorContext {
	ec := BuildErrorContext(instruction, resp, uc.engine.Elements())

	if uc.cfg.CaptureScreenshots && uc.screenshots != nil {
		shot, err := uc.screenshots.Screenshot(ctx)
		if err != nil {
			uc.logger.Warn("Screenshot capture failed", "error", err)
		} else {
			ec.Screenshot = shot
		}
	}
	return ec
}

// BuildErrorContext explains a failure: the closest candidate and why it was
// rejected, anything on the page that may block interaction, and ranked
// recovery suggestions.
func BuildErrorContext(instruction string, resp *entity.ActionResponse, elements []entity.SearchableElement) *entity.ErrorContext {
	ec := &entity.ErrorContext{
		Instruction: instruction,
		Timestamp:   time.Now(),
	}
	if resp != nil {
		ec.ErrorCode = resp.ErrorCode
		ec.Message = resp.Error
	}

	for _, el := range elements {
		if el.State.Visible {
			ec.CandidateCount++
		}
	}
	ec.Blockers = FindBlockers(elements)

	if resp != nil && len(resp.Alternatives) > 0 {
		alt := resp.Alternatives[0]
		ec.NearestMatch = &entity.NearestMatch{
			Element:         alt.Element,
			Confidence:      alt.Confidence,
			RejectionReason: rejectionReason(resp.ErrorCode, alt),
		}
	}

	ec.Suggestions = recoverySuggestions(ec, resp, len(elements))
	ec.RetryRecommended = len(ec.Blockers) > 0 ||
		ec.ErrorCode == entity.ErrElementNotFound ||
		ec.ErrorCode == entity.ErrActionFailed

	return ec
}

// FindBlockers lists visible dialogs and loading indicators.
func FindBlockers(elements []entity.SearchableElement) []entity.PageBlocker {
	var out []entity.PageBlocker
	for _, el := range elements {
		if !el.State.Visible {
			continue
		}
		role := strings.ToLower(el.Role)
		switch {
		case alias.IsBlockingRole(role) || strings.EqualFold(el.TagName, "dialog"):
			out = append(out, entity.PageBlocker{ElementID: el.ID, Description: describe(el), Kind: blockerDialog})
		case role == "progressbar" || isLoadingIndicator(el):
			out = append(out, entity.PageBlocker{ElementID: el.ID, Description: describe(el), Kind: blockerLoading})
		}
	}
	return out
}

func isLoadingIndicator(el entity.SearchableElement) bool {
	for _, s := range append([]string{el.Label, el.Text}, el.Aliases...) {
		s = strings.ToLower(s)
		if strings.Contains(s, "loading") || strings.Contains(s, "spinner") {
			return true
		}
	}
	return false
}

func rejectionReason(code entity.ErrorCode, alt entity.SearchResult) string {
	switch {
	case !alt.Element.State.Visible:
		return "element is hidden"
	case !alt.Element.State.Enabled:
		return "element is disabled"
	case code == entity.ErrActionFailed:
		return "element was not the one acted on"
	}
	return fmt.Sprintf("confidence %.2f is below the required threshold", alt.Confidence)
}

// recoverySuggestions always offers a page-load wait and, when the page has
// any elements at all, a scroll. Hidden elements count: scrolling is how they
// come into view.
func recoverySuggestions(ec *entity.ErrorContext, resp *entity.ActionResponse, elementCount int) []entity.RecoverySuggestion {
	var out []entity.RecoverySuggestion

	for _, b := range ec.Blockers {
		if b.Kind == blockerDialog {
			out = append(out, entity.RecoverySuggestion{
				Action:     fmt.Sprintf("Close the dialog %q", b.Description),
				Command:    `click "Close"`,
				Confidence: 0.8,
				Priority:   entity.PriorityHigh,
			})
		}
	}

	switch ec.ErrorCode {
	case entity.ErrElementNotFound, entity.ErrLowConfidence:
		if ec.NearestMatch != nil {
			verb := entity.ActionClick
			if resp != nil && resp.ParsedAction != nil {
				verb = resp.ParsedAction.Action
			}
			name := describe(ec.NearestMatch.Element)
			out = append(out, entity.RecoverySuggestion{
				Action:     fmt.Sprintf("Use the closest match %q", name),
				Command:    fmt.Sprintf("%s %q", verb, name),
				Confidence: ec.NearestMatch.Confidence,
				Priority:   entity.PriorityHigh,
			})
		}
		out = append(out, entity.RecoverySuggestion{
			Action:     "Use the exact visible text of the target element",
			Confidence: 0.5,
			Priority:   entity.PriorityMedium,
		})
	case entity.ErrActionFailed:
		out = append(out, entity.RecoverySuggestion{
			Action:     "Wait for the element to become enabled, then retry",
			Confidence: 0.6,
			Priority:   entity.PriorityMedium,
		})
	case entity.ErrParse, entity.ErrValidation:
		out = append(out, entity.RecoverySuggestion{
			Action:     "Rephrase the instruction with the element name in quotes",
			Command:    `click "Submit"`,
			Confidence: 0.7,
			Priority:   entity.PriorityHigh,
		})
	}

	// No command: the backends only wait on elements, not on the page.
	out = append(out, entity.RecoverySuggestion{
		Action:     "Wait for the page to finish loading",
		Confidence: 0.4,
		Priority:   entity.PriorityLow,
	})
	if elementCount > 0 {
		out = append(out, entity.RecoverySuggestion{
			Action:     "Scroll the target into view",
			Command:    "scroll down",
			Confidence: 0.3,
			Priority:   entity.PriorityLow,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
