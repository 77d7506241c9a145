package search

import (
	"strings"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/alias"
	"intent-resolver/internal/domain/entity"
)

// ToSearchable converts either element variant into the record the engine
// ranks. It reports false for an Element whose Kind and payload disagree.
func ToSearchable(el entity.Element, order, maxAliases int) (entity.SearchableElement, bool) {
	var (
		s entity.SearchableElement
		f alias.Fields
	)

	switch el.Kind {
	case entity.ElementRegistered:
		r := el.Registered
		if r == nil {
			return s, false
		}
		state := entity.ElementState{Visible: true, Enabled: true}
		if r.StateFunc != nil {
			state = r.StateFunc()
		}
		attr := func(k string) string { return strings.TrimSpace(r.Attrs[k]) }

		f = alias.Fields{
			ID:          r.ID,
			TagName:     r.TagName,
			Type:        r.Type,
			Role:        r.Role,
			Text:        firstNonEmpty(state.TextContent, r.Label),
			AriaLabel:   attr("aria-label"),
			LabelText:   attr("label"),
			Placeholder: attr("placeholder"),
			Title:       attr("title"),
			Name:        attr("name"),
		}
		s = entity.SearchableElement{
			ID:             r.ID,
			Kind:           entity.ElementRegistered,
			Type:           r.Type,
			TagName:        strings.ToLower(r.TagName),
			Role:           r.Role,
			Label:          strings.TrimSpace(r.Label),
			AccessibleName: firstNonEmpty(attr("aria-label"), r.Label),
			LabelledBy:     attr("aria-labelledby"),
			LabelText:      f.LabelText,
			Placeholder:    f.Placeholder,
			Title:          f.Title,
			Text:           collapse(state.TextContent),
			Value:          state.Value,
			Actions:        r.Actions,
			State:          state,
			Registered:     true,
		}

	case entity.ElementDiscovered:
		d := el.Discovered
		if d == nil {
			return s, false
		}
		f = alias.Fields{
			ID:          d.ID,
			TagName:     d.TagName,
			Type:        d.Type,
			Role:        d.Role,
			Text:        d.State.TextContent,
			AriaLabel:   d.AriaLabel,
			LabelText:   d.LabelText,
			Placeholder: d.Placeholder,
			Title:       d.Title,
			Name:        d.Name,
		}
		s = entity.SearchableElement{
			ID:             d.ID,
			Kind:           entity.ElementDiscovered,
			Type:           d.Type,
			TagName:        strings.ToLower(d.TagName),
			Role:           d.Role,
			AccessibleName: firstNonEmpty(d.AccessibleName, d.AriaLabel),
			LabelledBy:     collapse(d.LabelledBy),
			LabelText:      collapse(d.LabelText),
			Placeholder:    collapse(d.Placeholder),
			Title:          collapse(d.Title),
			Text:           collapse(d.State.TextContent),
			Value:          d.State.Value,
			Actions:        d.Actions,
			State:          d.State,
		}

	default:
		return s, false
	}

	inf := alias.Infer(f, maxAliases)
	if s.Label == "" {
		s.Label = inf.Label
	}
	s.Aliases = inf.Aliases
	s.Description = inf.Description
	s.Order = order
	return s, true
}

// mergeAnnotation widens the alias set with an annotation's description and tags.
func mergeAnnotation(s *entity.SearchableElement, src output.AnnotationSource) {
	if src == nil {
		return
	}
	a, ok := src.Annotation(s.ID)
	if !ok {
		return
	}

	if d := strings.TrimSpace(a.Description); d != "" {
		s.Description = d
		addAlias(s, d)
	}
	for _, tag := range a.Tags {
		addAlias(s, tag)
	}
	s.Tags = append([]string(nil), a.Tags...)
	s.Notes = a.Notes
}

func addAlias(s *entity.SearchableElement, raw string) {
	n := alias.NormalizeAlias(raw)
	if n == "" {
		return
	}
	for _, existing := range s.Aliases {
		if existing == n {
			return
		}
	}
	s.Aliases = append(s.Aliases, n)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = collapse(v); v != "" {
			return v
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
