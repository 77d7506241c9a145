package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"intent-resolver/internal/application/port/input"
	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/usecase/nlparse"
	"intent-resolver/internal/usecase/search"

	"github.com/google/uuid"
)

var _ input.ActionExecutor = (*UseCase)(nil)

const (
	DefaultConfidenceThreshold = 0.7
	DefaultCandidateThreshold  = 0.3
	DefaultMaxAlternatives     = 3
	DefaultTimeout             = 5 * time.Second

	defaultWaitCondition = "visible"
)

type Config struct {
	ConfidenceThreshold float64       `json:"confidenceThreshold" yaml:"confidenceThreshold" validate:"gte=0,lte=1"`
	CandidateThreshold  float64       `json:"candidateThreshold" yaml:"candidateThreshold" validate:"gte=0,lte=1"`
	MaxAlternatives     int           `json:"maxAlternatives" yaml:"maxAlternatives" validate:"gte=0"`
	DefaultTimeout      time.Duration `json:"defaultTimeout" yaml:"defaultTimeout" validate:"gte=0"`
	CaptureScreenshots  bool          `json:"captureScreenshots" yaml:"captureScreenshots"`
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		CandidateThreshold:  DefaultCandidateThreshold,
		MaxAlternatives:     DefaultMaxAlternatives,
		DefaultTimeout:      DefaultTimeout,
	}
}

// Deps are the collaborators of the executor. Inventory, Screenshots,
// Rewriter and Metrics are optional.
type Deps struct {
	Parser      *nlparse.Parser
	Engine      *search.Engine
	Backend     output.ActionBackend
	Inventory   output.ElementInventory
	Screenshots output.ScreenshotPort
	Rewriter    output.InstructionRewriter
	Metrics     output.MetricsPort
	Logger      output.LoggerPort
}

// UseCase runs parse, search, confidence gate and invoke for one
// natural-language instruction.
type UseCase struct {
	cfg         Config
	parser      *nlparse.Parser
	engine      *search.Engine
	backend     output.ActionBackend
	inventory   output.ElementInventory
	screenshots output.ScreenshotPort
	rewriter    output.InstructionRewriter
	metrics     output.MetricsPort
	logger      output.LoggerPort
}

func New(cfg Config, deps Deps) *UseCase {
	if deps.Parser == nil {
		deps.Parser = nlparse.New()
	}
	if deps.Metrics == nil {
		deps.Metrics = output.NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = output.NopLogger{}
	}
	if cfg.MaxAlternatives < 0 {
		cfg.MaxAlternatives = 0
	}

	return &UseCase{
		cfg:         cfg,
		parser:      deps.Parser,
		engine:      deps.Engine,
		backend:     deps.Backend,
		inventory:   deps.Inventory,
		screenshots: deps.Screenshots,
		rewriter:    deps.Rewriter,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
}

// run carries the per-request state through the pipeline.
type run struct {
	req       entity.NLActionRequest
	resp      *entity.ActionResponse
	logger    output.LoggerPort
	start     time.Time
	threshold float64
	maxAlts   int
}

// Execute never returns nil and never panics on backend failures; every
// outcome is a populated response with Success set accordingly.
func (uc *UseCase) Execute(ctx context.Context, req entity.NLActionRequest) *entity.ActionResponse {
	r := uc.newRun(req)
	r.logger.Debug("Executing instruction")

	uc.refresh(ctx, r.logger)

	action, err := uc.parse(ctx, req.Instruction, r.logger)
	if err != nil {
		return uc.fail(r, entity.ErrParse, fmt.Sprintf("could not parse instruction: %v", err))
	}
	r.resp.ParsedAction = action
	r.resp.ExecutedAction = nlparse.DescribeAction(action)

	if err := nlparse.ValidateParsedAction(action); err != nil {
		return uc.fail(r, entity.ErrValidation, err.Error())
	}

	if action.Action == entity.ActionScroll && action.TargetDescription == "" {
		return uc.invoke(ctx, r, action, nil, nil)
	}

	criteria := BuildCriteria(action, req, uc.cfg.CandidateThreshold)
	found := uc.engine.Search(criteria)

	if found.BestMatch == nil {
		r.resp.Alternatives = uc.diagnosticAlternatives(criteria, r.maxAlts)
		return uc.fail(r, entity.ErrElementNotFound,
			fmt.Sprintf("no element matches %q", action.TargetDescription))
	}

	best := *found.BestMatch
	r.resp.Confidence = best.Confidence
	if best.Confidence < r.threshold {
		r.resp.Alternatives = head(found.Results, r.maxAlts)
		return uc.fail(r, entity.ErrLowConfidence,
			fmt.Sprintf("best match %q has confidence %.2f, below threshold %.2f",
				best.Element.Label, best.Confidence, r.threshold))
	}

	return uc.invoke(ctx, r, action, &best, found.Results[1:])
}

func (uc *UseCase) newRun(req entity.NLActionRequest) *run {
	requestID := uuid.NewString()
	start := time.Now()

	threshold := uc.cfg.ConfidenceThreshold
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}
	maxAlts := uc.cfg.MaxAlternatives
	if req.MaxAlternatives > 0 {
		maxAlts = req.MaxAlternatives
	}

	return &run{
		req: req,
		resp: &entity.ActionResponse{
			RequestID: requestID,
			Timestamp: start,
		},
		logger: uc.logger.WithFields(map[string]any{
			"request_id":  requestID,
			"instruction": req.Instruction,
		}),
		start:     start,
		threshold: threshold,
		maxAlts:   maxAlts,
	}
}

// refresh pulls a fresh element set when an inventory is wired. A failed
// pull keeps the previous index.
func (uc *UseCase) refresh(ctx context.Context, logger output.LoggerPort) bool {
	if uc.inventory == nil {
		return false
	}
	elements, err := uc.inventory.Elements(ctx)
	if err != nil {
		logger.Warn("Element inventory refresh failed", "error", err)
		return false
	}
	uc.engine.UpdateElements(elements)
	return true
}

// parse runs the grammar and, only if both grammar tiers fail, asks the
// rewriter for canonical phrasing that must then pass the strict rules.
func (uc *UseCase) parse(ctx context.Context, instruction string, logger output.LoggerPort) (*entity.ParsedAction, error) {
	action, err := uc.parser.Parse(instruction)
	if err == nil || uc.rewriter == nil || !errors.Is(err, nlparse.ErrNoMatch) {
		return action, err
	}

	rewritten, rerr := uc.rewriter.Rewrite(ctx, instruction)
	if rerr != nil {
		logger.Warn("Instruction rewrite failed", "error", rerr)
		return nil, err
	}

	action, serr := uc.parser.ParseStrict(rewritten)
	if serr != nil {
		logger.Debug("Rewritten instruction not understood", "rewritten", rewritten)
		return nil, err
	}
	logger.Info("Instruction rewritten", "rewritten", rewritten)
	action.RawInstruction = instruction
	return action, nil
}

// BuildCriteria turns a parsed action into search criteria. The action verb
// only biases the element type; it never filters.
func BuildCriteria(action *entity.ParsedAction, req entity.NLActionRequest, candidateThreshold float64) entity.SearchCriteria {
	c := entity.SearchCriteria{
		Text:           action.TargetDescription,
		TypeFamily:     typeHint(action.Action),
		Near:           req.Context,
		FuzzyThreshold: entity.Float(candidateThreshold),
	}
	return c
}

func typeHint(a entity.ActionType) string {
	switch a {
	case entity.ActionTypeText, entity.ActionClear:
		return "input"
	case entity.ActionSelect:
		return "select"
	case entity.ActionCheck, entity.ActionUncheck:
		return "checkbox"
	}
	return ""
}

// diagnosticAlternatives re-queries with no threshold so that a failure can
// still name the closest elements.
func (uc *UseCase) diagnosticAlternatives(criteria entity.SearchCriteria, n int) []entity.SearchResult {
	if n <= 0 {
		return nil
	}
	criteria.FuzzyThreshold = entity.Float(0)
	return head(uc.engine.Search(criteria).Results, n)
}

func (uc *UseCase) invoke(
	ctx context.Context,
	r *run,
	action *entity.ParsedAction,
	target *entity.SearchResult,
	others []entity.SearchResult,
) *entity.ActionResponse {
	elementID := ""
	if target != nil {
		elementID = target.Element.ID
		el := target.Element
		r.resp.ElementUsed = &el
		r.resp.Confidence = target.Confidence
	}

	if action.Action == entity.ActionAssert {
		r.resp.Alternatives = head(others, r.maxAlts)
		return uc.fail(r, entity.ErrActionFailed,
			"assert is not executed by the action engine; evaluate assertions with a test runner")
	}

	state, err := uc.call(ctx, r, elementID, action)
	if err != nil {
		r.resp.Alternatives = head(others, r.maxAlts)
		return uc.fail(r, entity.ErrActionFailed, err.Error())
	}

	r.resp.Success = true
	r.resp.ElementState = state
	if state == nil && target != nil {
		s := target.Element.State
		r.resp.ElementState = &s
	}
	return uc.finish(r)
}

// call invokes the backend and converts every failure mode, including a
// panic, into an error carrying the backend's own message.
func (uc *UseCase) call(ctx context.Context, r *run, elementID string, action *entity.ParsedAction) (state *entity.ElementState, err error) {
	defer func() {
		if p := recover(); p != nil {
			state = nil
			err = fmt.Errorf("action backend panicked: %v", p)
		}
	}()

	if uc.backend == nil {
		return nil, errors.New("no action backend configured")
	}

	timeout := r.req.Timeout
	if timeout <= 0 {
		timeout = uc.cfg.DefaultTimeout
	}

	if action.Action == entity.ActionWait {
		condition := action.WaitCondition
		if condition == "" {
			condition = defaultWaitCondition
		}
		res, err := uc.backend.WaitFor(ctx, elementID, output.WaitOptions{Condition: condition, Timeout: timeout})
		if err != nil {
			return nil, err
		}
		if res == nil || !res.Met {
			msg := fmt.Sprintf("condition %q was not met within %s", condition, timeout)
			if res != nil && res.Error != "" {
				msg = res.Error
			}
			return nil, errors.New(msg)
		}
		return res.State, nil
	}

	res, err := uc.backend.ExecuteAction(ctx, elementID, output.ActionRequest{
		RequestID:       r.resp.RequestID,
		Action:          action.Action,
		Value:           action.Value,
		Modifiers:       action.Modifiers,
		ScrollDirection: action.ScrollDirection,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("action backend returned no result")
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = fmt.Sprintf("%s failed", action.Action)
		}
		return nil, errors.New(msg)
	}
	return res.ElementState, nil
}

func (uc *UseCase) fail(r *run, code entity.ErrorCode, msg string) *entity.ActionResponse {
	r.resp.Success = false
	r.resp.ErrorCode = code
	r.resp.Error = msg
	r.resp.Suggestions = Suggestions(code, r.resp, r.threshold)
	return uc.finish(r)
}

func (uc *UseCase) finish(r *run) *entity.ActionResponse {
	r.resp.Duration = time.Since(r.start)

	actionName := "unknown"
	if r.resp.ParsedAction != nil {
		actionName = r.resp.ParsedAction.Action.String()
	}
	outcome := "success"
	if !r.resp.Success {
		outcome = r.resp.ErrorCode.String()
	}
	uc.metrics.ActionExecuted(actionName, outcome, r.resp.Duration)

	if r.resp.Success {
		elementID := ""
		if r.resp.ElementUsed != nil {
			elementID = r.resp.ElementUsed.ID
		}
		r.logger.Info("Action executed",
			"action", r.resp.ExecutedAction,
			"element_id", elementID,
			"confidence", r.resp.Confidence,
			"duration", r.resp.Duration,
		)
	} else {
		r.logger.Warn("Action failed",
			"error_code", r.resp.ErrorCode,
			"error", r.resp.Error,
			"alternatives", len(r.resp.Alternatives),
			"duration", r.resp.Duration,
		)
	}
	return r.resp
}

// ExecuteSequence splits a compound instruction and executes the parts in
// order, stopping after the first failure. Fields of req other than
// Instruction apply to every part.
func (uc *UseCase) ExecuteSequence(ctx context.Context, instructions string, req entity.NLActionRequest) []*entity.ActionResponse {
	parts := nlparse.SplitCompoundInstruction(instructions)
	if len(parts) == 0 {
		parts = []string{instructions}
	}

	responses := make([]*entity.ActionResponse, 0, len(parts))
	for i, part := range parts {
		step := req
		step.Instruction = part
		resp := uc.Execute(ctx, step)
		responses = append(responses, resp)
		if !resp.Success {
			uc.logger.Warn("Sequence stopped", "step", i+1, "steps", len(parts), "error_code", resp.ErrorCode)
			break
		}
	}
	return responses
}

func head(results []entity.SearchResult, n int) []entity.SearchResult {
	if n <= 0 || len(results) == 0 {
		return nil
	}
	if len(results) > n {
		results = results[:n]
	}
	out := make([]entity.SearchResult, len(results))
	copy(out, results)
	return out
}
