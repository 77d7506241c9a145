package executor

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/infrastructure/logger"
	"intent-resolver/internal/usecase/nlparse"
	"intent-resolver/internal/usecase/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actionCall struct {
	elementID string
	req       output.ActionRequest
}

type waitCall struct {
	elementID string
	opts      output.WaitOptions
}

// fakeBackend records calls. onAction decides the outcome of ExecuteAction;
// nil means success.
type fakeBackend struct {
	mu       sync.Mutex
	actions  []actionCall
	waits    []waitCall
	onAction func(elementID string, req output.ActionRequest) (*output.ActionResult, error)
	waitMet  bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{waitMet: true}
}

func (b *fakeBackend) ExecuteAction(_ context.Context, elementID string, req output.ActionRequest) (*output.ActionResult, error) {
	b.mu.Lock()
	b.actions = append(b.actions, actionCall{elementID: elementID, req: req})
	fn := b.onAction
	b.mu.Unlock()

	if fn != nil {
		return fn(elementID, req)
	}
	return &output.ActionResult{Success: true}, nil
}

func (b *fakeBackend) WaitFor(_ context.Context, elementID string, opts output.WaitOptions) (*output.WaitResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.waits = append(b.waits, waitCall{elementID: elementID, opts: opts})
	return &output.WaitResult{Met: b.waitMet}, nil
}

func (b *fakeBackend) clicks(elementID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.actions {
		if c.elementID == elementID && c.req.Action == entity.ActionClick {
			n++
		}
	}
	return n
}

type fakeInventory struct {
	elements []entity.Element
	err      error
	calls    int
}

func (i *fakeInventory) Elements(context.Context) ([]entity.Element, error) {
	i.calls++
	return i.elements, i.err
}

type fakeRewriter struct {
	out string
	err error
}

func (r fakeRewriter) Rewrite(context.Context, string) (string, error) {
	return r.out, r.err
}

type fakeScreenshots struct{}

func (fakeScreenshots) Screenshot(context.Context) (*entity.Screenshot, error) {
	return &entity.Screenshot{Data: []byte{1}, Format: "png", Width: 1, Height: 1}, nil
}

type fakeMetrics struct {
	outcomes []string
}

func (m *fakeMetrics) SearchPerformed(int, time.Duration) {}
func (m *fakeMetrics) ActionExecuted(action, outcome string, _ time.Duration) {
	m.outcomes = append(m.outcomes, action+":"+outcome)
}

func button(id, text string, rect entity.Rect) entity.Element {
	return entity.NewDiscovered(entity.DiscoveredElement{
		ID:      id,
		Type:    "button",
		TagName: "button",
		Actions: []string{"click"},
		State:   entity.ElementState{Visible: true, Enabled: true, TextContent: text, Rect: rect},
	})
}

func textInput(id, label string) entity.Element {
	return entity.NewDiscovered(entity.DiscoveredElement{
		ID:          id,
		Type:        "text",
		TagName:     "input",
		LabelText:   label,
		Placeholder: label,
		Actions:     []string{"type", "clear"},
		State:       entity.ElementState{Visible: true, Enabled: true},
	})
}

func dialog(id, name string, rect entity.Rect) entity.Element {
	return entity.NewDiscovered(entity.DiscoveredElement{
		ID:             id,
		TagName:        "div",
		Role:           "dialog",
		AccessibleName: name,
		State:          entity.ElementState{Visible: true, Enabled: true, Rect: rect},
	})
}

func newEngine(elements ...entity.Element) *search.Engine {
	e := search.New(search.DefaultConfig(), logger.NewNopLogger(), nil, nil)
	e.UpdateElements(elements)
	return e
}

func newUseCase(backend output.ActionBackend, elements ...entity.Element) *UseCase {
	return New(DefaultConfig(), Deps{
		Engine:  newEngine(elements...),
		Backend: backend,
		Logger:  logger.NewNopLogger(),
	})
}

func defaultPage() []entity.Element {
	return []entity.Element{
		button("submit-btn", "Submit", entity.Rect{}),
		button("cancel-btn", "Cancel", entity.Rect{}),
	}
}

func TestExecute_Success(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, defaultPage()...)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click the Submit button"})

	require.True(t, resp.Success, resp.Error)
	require.NotNil(t, resp.ElementUsed)
	assert.Equal(t, "submit-btn", resp.ElementUsed.ID)
	assert.GreaterOrEqual(t, resp.Confidence, DefaultConfidenceThreshold)
	assert.Equal(t, `Click on "Submit"`, resp.ExecutedAction)
	assert.NotEmpty(t, resp.RequestID)
	assert.Empty(t, resp.ErrorCode)
	require.NotNil(t, resp.ElementState)

	require.Len(t, backend.actions, 1)
	assert.Equal(t, "submit-btn", backend.actions[0].elementID)
	assert.Equal(t, entity.ActionClick, backend.actions[0].req.Action)
	assert.Equal(t, resp.RequestID, backend.actions[0].req.RequestID)
	assert.Equal(t, DefaultTimeout, backend.actions[0].req.Timeout)
}

func TestExecute_TypeRoutesValue(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, textInput("email", "Email"), button("send", "Send", entity.Rect{}))

	resp := uc.Execute(context.Background(), entity.NLActionRequest{
		Instruction: `type "hello@example.com" into the Email field`,
		Timeout:     time.Second,
	})

	require.True(t, resp.Success, resp.Error)
	require.Len(t, backend.actions, 1)
	assert.Equal(t, "email", backend.actions[0].elementID)
	assert.Equal(t, entity.ActionTypeText, backend.actions[0].req.Action)
	assert.Equal(t, "hello@example.com", backend.actions[0].req.Value)
	assert.Equal(t, time.Second, backend.actions[0].req.Timeout)
}

func TestExecute_VerbBiasesTypeFamily(t *testing.T) {
	link := entity.NewDiscovered(entity.DiscoveredElement{
		ID: "email-help", TagName: "a", Type: "link", Actions: []string{"click"},
		State: entity.ElementState{Visible: true, Enabled: true, TextContent: "Email"},
	})
	input := entity.NewDiscovered(entity.DiscoveredElement{
		ID: "email", TagName: "input", Type: "email", LabelText: "Email", Actions: []string{"type", "clear"},
		State: entity.ElementState{Visible: true, Enabled: true},
	})
	backend := newFakeBackend()
	uc := newUseCase(backend, link, input)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: `type "a@b.c" into the Email field`})

	require.True(t, resp.Success, resp.Error)
	require.NotNil(t, resp.ElementUsed)
	assert.Equal(t, "email", resp.ElementUsed.ID)
}

func TestBuildCriteria(t *testing.T) {
	tests := []struct {
		action entity.ActionType
		family string
	}{
		{entity.ActionTypeText, "input"},
		{entity.ActionClear, "input"},
		{entity.ActionSelect, "select"},
		{entity.ActionCheck, "checkbox"},
		{entity.ActionUncheck, "checkbox"},
		{entity.ActionClick, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			c := BuildCriteria(&entity.ParsedAction{Action: tt.action, TargetDescription: "Email"},
				entity.NLActionRequest{Context: "Login"}, 0.3)
			assert.Equal(t, "Email", c.Text)
			assert.Empty(t, c.Type, "the verb never sets an exact type")
			assert.Equal(t, tt.family, c.TypeFamily)
			assert.Equal(t, "Login", c.Near)
			require.NotNil(t, c.FuzzyThreshold)
			assert.Equal(t, 0.3, *c.FuzzyThreshold)
		})
	}
}

func TestExecute_NilLogger(t *testing.T) {
	engine := search.New(search.DefaultConfig(), nil, nil, nil)
	engine.UpdateElements(defaultPage())
	uc := New(DefaultConfig(), Deps{Engine: engine, Backend: newFakeBackend()})

	var resp *entity.ActionResponse
	require.NotPanics(t, func() {
		resp = uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Submit"})
	})
	require.True(t, resp.Success, resp.Error)

	require.NotPanics(t, func() {
		resp = uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Zyxwv"})
	})
	assert.Equal(t, entity.ErrElementNotFound, resp.ErrorCode)
}

func TestExecute_ActionFailedKeepsBackendMessage(t *testing.T) {
	backend := newFakeBackend()
	backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
		return &output.ActionResult{Success: false, Error: "element is detached from the DOM"}, nil
	}
	uc := newUseCase(backend, defaultPage()...)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Submit"})

	assert.False(t, resp.Success)
	assert.Equal(t, entity.ErrActionFailed, resp.ErrorCode)
	assert.Equal(t, "element is detached from the DOM", resp.Error)
	require.NotNil(t, resp.ElementUsed)
	assert.Equal(t, "submit-btn", resp.ElementUsed.ID)
	assert.NotEmpty(t, resp.Suggestions)
	for _, alt := range resp.Alternatives {
		assert.NotEqual(t, "submit-btn", alt.Element.ID, "the element acted on is not an alternative")
	}
}

func TestExecute_BackendErrorAndPanic(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		backend := newFakeBackend()
		backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
			return nil, errors.New("target closed")
		}
		resp := newUseCase(backend, defaultPage()...).Execute(context.Background(), entity.NLActionRequest{Instruction: "click Submit"})

		assert.Equal(t, entity.ErrActionFailed, resp.ErrorCode)
		assert.Equal(t, "target closed", resp.Error)
	})

	t.Run("panic", func(t *testing.T) {
		backend := newFakeBackend()
		backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
			panic("boom")
		}
		var resp *entity.ActionResponse
		require.NotPanics(t, func() {
			resp = newUseCase(backend, defaultPage()...).Execute(context.Background(), entity.NLActionRequest{Instruction: "click Submit"})
		})

		assert.False(t, resp.Success)
		assert.Equal(t, entity.ErrActionFailed, resp.ErrorCode)
		assert.Contains(t, resp.Error, "boom")
	})
}

func TestExecute_HighThresholdRejects(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, defaultPage()...)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{
		Instruction:         "click Sbmit",
		ConfidenceThreshold: entity.Float(0.99),
	})

	assert.False(t, resp.Success)
	assert.Contains(t, []entity.ErrorCode{entity.ErrLowConfidence, entity.ErrElementNotFound}, resp.ErrorCode)
	assert.Empty(t, backend.actions, "nothing is invoked below the threshold")
	require.NotEmpty(t, resp.Alternatives)
	assert.Equal(t, "submit-btn", resp.Alternatives[0].Element.ID)
	assert.LessOrEqual(t, len(resp.Alternatives), DefaultMaxAlternatives)
}

func TestExecute_ElementNotFound(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, defaultPage()...)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Zyxwv"})

	assert.False(t, resp.Success)
	assert.Equal(t, entity.ErrElementNotFound, resp.ErrorCode)
	assert.Nil(t, resp.ElementUsed)
	assert.Empty(t, backend.actions)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestExecute_ParseError(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, defaultPage()...)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "xyzzy plugh"})

	assert.False(t, resp.Success)
	assert.Equal(t, entity.ErrParse, resp.ErrorCode)
	assert.Nil(t, resp.ParsedAction)
	assert.NotEmpty(t, resp.Suggestions)
	assert.Empty(t, backend.actions)
}

func TestExecute_ValidationError(t *testing.T) {
	backend := newFakeBackend()
	parser := nlparse.NewWithRules([]nlparse.Rule{{
		Name:       "poke",
		Pattern:    regexp.MustCompile(`(?i)^poke (.+)$`),
		Action:     entity.ActionClick,
		Target:     1,
		Confidence: 0.3,
	}})
	uc := New(DefaultConfig(), Deps{
		Parser:  parser,
		Engine:  newEngine(defaultPage()...),
		Backend: backend,
		Logger:  logger.NewNopLogger(),
	})

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "poke Submit"})

	assert.Equal(t, entity.ErrValidation, resp.ErrorCode)
	require.NotNil(t, resp.ParsedAction)
	assert.Empty(t, backend.actions)
}

func TestExecute_PageScrollSkipsSearch(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "scroll down"})

	require.True(t, resp.Success, resp.Error)
	assert.Nil(t, resp.ElementUsed)
	require.Len(t, backend.actions, 1)
	assert.Equal(t, "", backend.actions[0].elementID)
	assert.Equal(t, entity.ScrollDown, backend.actions[0].req.ScrollDirection)
}

func TestExecute_AssertIsRejected(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, defaultPage()...)

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "assert the Submit button is visible"})

	assert.False(t, resp.Success)
	assert.Equal(t, entity.ErrActionFailed, resp.ErrorCode)
	assert.Contains(t, resp.Error, "assert")
	assert.Empty(t, backend.actions)
}

func TestExecute_Wait(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, button("save", "Save", entity.Rect{}))

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "wait until Save is enabled"})
	require.True(t, resp.Success, resp.Error)
	require.Len(t, backend.waits, 1)
	assert.Equal(t, "save", backend.waits[0].elementID)
	assert.Equal(t, "enabled", backend.waits[0].opts.Condition)

	resp = uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "wait for Save"})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "visible", backend.waits[1].opts.Condition)

	backend.waitMet = false
	resp = uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "wait for Save"})
	assert.Equal(t, entity.ErrActionFailed, resp.ErrorCode)
	assert.Contains(t, resp.Error, "visible")
}

func TestExecute_Rewriter(t *testing.T) {
	t.Run("strict reparse succeeds", func(t *testing.T) {
		backend := newFakeBackend()
		uc := New(DefaultConfig(), Deps{
			Engine:   newEngine(defaultPage()...),
			Backend:  backend,
			Rewriter: fakeRewriter{out: `click "Submit"`},
			Logger:   logger.NewNopLogger(),
		})

		resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "make the thing go"})

		require.True(t, resp.Success, resp.Error)
		assert.Equal(t, "make the thing go", resp.ParsedAction.RawInstruction)
		assert.Equal(t, 1, backend.clicks("submit-btn"))
	})

	t.Run("unusable rewrite is a parse error", func(t *testing.T) {
		uc := New(DefaultConfig(), Deps{
			Engine:   newEngine(defaultPage()...),
			Backend:  newFakeBackend(),
			Rewriter: fakeRewriter{out: "I am not sure what you mean"},
			Logger:   logger.NewNopLogger(),
		})

		resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "make the thing go"})
		assert.Equal(t, entity.ErrParse, resp.ErrorCode)
	})

	t.Run("rewriter error is a parse error", func(t *testing.T) {
		uc := New(DefaultConfig(), Deps{
			Engine:   newEngine(defaultPage()...),
			Backend:  newFakeBackend(),
			Rewriter: fakeRewriter{err: errors.New("rate limited")},
			Logger:   logger.NewNopLogger(),
		})

		resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "make the thing go"})
		assert.Equal(t, entity.ErrParse, resp.ErrorCode)
	})
}

func TestExecute_InventoryRefresh(t *testing.T) {
	backend := newFakeBackend()
	inv := &fakeInventory{elements: defaultPage()}
	engine := newEngine()
	uc := New(DefaultConfig(), Deps{
		Engine:    engine,
		Backend:   backend,
		Inventory: inv,
		Logger:    logger.NewNopLogger(),
	})

	resp := uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Submit"})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, 1, inv.calls)
	assert.Len(t, engine.Elements(), 2)

	inv.err = errors.New("page crashed")
	resp = uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Cancel"})
	require.True(t, resp.Success, "a failed refresh keeps the previous index")
	assert.Equal(t, "cancel-btn", resp.ElementUsed.ID)
}

func TestExecute_RecordsMetrics(t *testing.T) {
	metrics := &fakeMetrics{}
	uc := New(DefaultConfig(), Deps{
		Engine:  newEngine(defaultPage()...),
		Backend: newFakeBackend(),
		Metrics: metrics,
		Logger:  logger.NewNopLogger(),
	})

	uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "click Submit"})
	uc.Execute(context.Background(), entity.NLActionRequest{Instruction: "xyzzy"})

	assert.Equal(t, []string{"click:success", "unknown:PARSE_ERROR"}, metrics.outcomes)
}

func TestExecuteSequence(t *testing.T) {
	t.Run("all steps", func(t *testing.T) {
		backend := newFakeBackend()
		uc := newUseCase(backend, defaultPage()...)

		responses := uc.ExecuteSequence(context.Background(), `click "Submit" then click "Cancel"`, entity.NLActionRequest{})

		require.Len(t, responses, 2)
		assert.True(t, responses[0].Success)
		assert.True(t, responses[1].Success)
		assert.Equal(t, 1, backend.clicks("submit-btn"))
		assert.Equal(t, 1, backend.clicks("cancel-btn"))
	})

	t.Run("stops at first failure", func(t *testing.T) {
		backend := newFakeBackend()
		uc := newUseCase(backend, defaultPage()...)

		responses := uc.ExecuteSequence(context.Background(), `click "Zyxwv" then click "Cancel"`, entity.NLActionRequest{})

		require.Len(t, responses, 1)
		assert.False(t, responses[0].Success)
		assert.Zero(t, backend.clicks("cancel-btn"))
	})
}
