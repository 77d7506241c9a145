package htmldoc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
)

var _ output.ActionBackend = (*DryRunBackend)(nil)

var ErrUnknownElement = errors.New("unknown element")

// Recorded is one action the dry-run backend accepted or refused.
type Recorded struct {
	ElementID string
	Request   output.ActionRequest
	Success   bool
	Error     string
}

// DryRunBackend applies actions to an in-memory copy of a Document's element
// states instead of a browser. It refuses actions on hidden or disabled
// elements the way a real page would.
type DryRunBackend struct {
	mu       sync.Mutex
	states   map[string]*entity.ElementState
	recorded []Recorded
}

func NewDryRunBackend(doc *Document) *DryRunBackend {
	b := &DryRunBackend{states: make(map[string]*entity.ElementState)}
	for _, el := range doc.elements {
		if el.Discovered == nil {
			continue
		}
		st := el.Discovered.State
		b.states[el.Discovered.ID] = &st
	}
	return b
}

func (b *DryRunBackend) ExecuteAction(_ context.Context, elementID string, req output.ActionRequest) (*output.ActionResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elementID == "" {
		if req.Action != entity.ActionScroll {
			return nil, fmt.Errorf("%w: %s needs an element", ErrUnknownElement, req.Action)
		}
		b.record(elementID, req, "")
		return &output.ActionResult{Success: true}, nil
	}

	st, ok := b.states[elementID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, elementID)
	}

	if msg := b.apply(st, req); msg != "" {
		b.record(elementID, req, msg)
		return &output.ActionResult{Success: false, Error: msg}, nil
	}

	b.record(elementID, req, "")
	snapshot := *st
	return &output.ActionResult{Success: true, ElementState: &snapshot}, nil
}

func (b *DryRunBackend) apply(st *entity.ElementState, req output.ActionRequest) string {
	switch req.Action {
	case entity.ActionScroll, entity.ActionHover:
		if !st.Visible {
			return "element is not visible"
		}
		return ""
	}

	if !st.Visible {
		return "element is not visible"
	}
	if !st.Enabled {
		return "element is disabled"
	}

	switch req.Action {
	case entity.ActionTypeText:
		st.Value = req.Value
	case entity.ActionClear:
		st.Value = ""
	case entity.ActionSelect:
		st.Value = req.Value
		st.SelectedOptions = []string{req.Value}
	case entity.ActionCheck, entity.ActionUncheck:
		checked := req.Action == entity.ActionCheck
		st.Checked = &checked
	case entity.ActionFocus:
		st.Focused = true
	case entity.ActionClick, entity.ActionDoubleClick, entity.ActionRightClick:
		if st.Checked != nil && req.Action == entity.ActionClick {
			toggled := !*st.Checked
			st.Checked = &toggled
		}
	default:
		return fmt.Sprintf("unsupported action %q", req.Action)
	}
	return ""
}

func (b *DryRunBackend) WaitFor(_ context.Context, elementID string, opts output.WaitOptions) (*output.WaitResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[elementID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, elementID)
	}

	snapshot := *st
	met, known := conditionMet(st, opts.Condition)
	if !known {
		return &output.WaitResult{Met: false, State: &snapshot, Error: fmt.Sprintf("unknown wait condition %q", opts.Condition)}, nil
	}
	return &output.WaitResult{Met: met, State: &snapshot}, nil
}

func conditionMet(st *entity.ElementState, condition string) (met bool, known bool) {
	checked := st.Checked != nil && *st.Checked
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "", "visible", "appear", "shown", "present":
		return st.Visible, true
	case "hidden", "invisible", "disappear", "gone":
		return !st.Visible, true
	case "enabled", "clickable":
		return st.Enabled, true
	case "disabled":
		return !st.Enabled, true
	case "checked", "selected":
		return checked, true
	case "unchecked":
		return !checked, true
	}
	return false, false
}

func (b *DryRunBackend) record(elementID string, req output.ActionRequest, errMsg string) {
	b.recorded = append(b.recorded, Recorded{
		ElementID: elementID,
		Request:   req,
		Success:   errMsg == "",
		Error:     errMsg,
	})
}

// Recorded returns every action attempted so far, in order.
func (b *DryRunBackend) Recorded() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Recorded(nil), b.recorded...)
}

// State returns the current simulated state of an element.
func (b *DryRunBackend) State(elementID string) (entity.ElementState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[elementID]
	if !ok {
		return entity.ElementState{}, false
	}
	return *st, true
}
