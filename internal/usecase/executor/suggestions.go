package executor

import (
	"fmt"

	"intent-resolver/internal/domain/entity"
)

// Suggestions returns human-readable hints for a failed response. The
// wording depends only on the error code and the alternatives attached.
func Suggestions(code entity.ErrorCode, resp *entity.ActionResponse, threshold float64) []string {
	switch code {
	case entity.ErrParse:
		return []string{
			`Rephrase as a simple command such as: click "Submit", type "hello" into "Search"`,
			"Put values and element names in quotes",
		}

	case entity.ErrValidation:
		return []string{
			"Name the element the action should apply to",
			"Actions such as type and select need a quoted value",
		}

	case entity.ErrElementNotFound:
		var out []string
		for _, alt := range resp.Alternatives {
			out = append(out, fmt.Sprintf("Did you mean %q?", describe(alt.Element)))
		}
		return append(out,
			"Make sure the element is visible on the page",
			"Use more specific text from the element label",
		)

	case entity.ErrLowConfidence:
		var out []string
		if len(resp.Alternatives) > 0 {
			best := resp.Alternatives[0]
			out = append(out, fmt.Sprintf("Closest match is %q with confidence %.2f", describe(best.Element), best.Confidence))
		}
		return append(out,
			"Use the exact visible text of the element",
			fmt.Sprintf("Lower the confidence threshold below %.2f if the closest match is correct", threshold),
		)

	case entity.ErrActionFailed:
		return []string{
			"Check that the element is enabled",
			"Wait for the page to finish loading and try again",
			"Check whether an overlay or dialog covers the element",
		}
	}
	return nil
}

func describe(el entity.SearchableElement) string {
	switch {
	case el.Description != "":
		return el.Description
	case el.Label != "":
		return el.Label
	case el.Text != "":
		return el.Text
	}
	return el.ID
}
