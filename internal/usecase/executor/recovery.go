package executor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/usecase/nlparse"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxRetries               = 3
	DefaultRetryDelay               = 500 * time.Millisecond
	DefaultAlternativeMinConfidence = 0.5

	backoffMultiplier  = 2.0
	backoffMaxInterval = 5 * time.Second
)

var errNotRecoverable = errors.New("failure is not recoverable")

func DefaultRecoveryConfig() entity.RecoveryConfig {
	return entity.RecoveryConfig{
		MaxRetries:               DefaultMaxRetries,
		RetryDelay:               DefaultRetryDelay,
		ExponentialBackoff:       true,
		AlternativeMinConfidence: DefaultAlternativeMinConfidence,
	}
}

// StrategiesFor returns the recovery strategies worth trying for an error
// code, in the order they are applied. Parse and validation failures have
// none: retrying the same text cannot change the outcome.
func StrategiesFor(code entity.ErrorCode) []entity.RecoveryStrategy {
	switch code {
	case entity.ErrElementNotFound:
		return []entity.RecoveryStrategy{
			entity.StrategyWaitVisible,
			entity.StrategyScrollIntoView,
			entity.StrategyAlternativeElement,
			entity.StrategyRefresh,
		}
	case entity.ErrLowConfidence:
		return []entity.RecoveryStrategy{entity.StrategyAlternativeElement}
	case entity.ErrActionFailed:
		return []entity.RecoveryStrategy{
			entity.StrategyRetry,
			entity.StrategyWaitEnabled,
			entity.StrategyDismissOverlay,
		}
	}
	return nil
}

func strategiesFor(code entity.ErrorCode, cfg entity.RecoveryConfig) []entity.RecoveryStrategy {
	all := StrategiesFor(code)
	if len(cfg.Strategies) == 0 {
		return all
	}
	out := make([]entity.RecoveryStrategy, 0, len(all))
	for _, s := range all {
		if slices.Contains(cfg.Strategies, s) {
			out = append(out, s)
		}
	}
	return out
}

func newBackOff(cfg entity.RecoveryConfig) backoff.BackOff {
	if !cfg.ExponentialBackoff {
		return backoff.NewConstantBackOff(cfg.RetryDelay)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.RetryDelay
	b.Multiplier = backoffMultiplier
	b.RandomizationFactor = 0
	b.MaxInterval = backoffMaxInterval
	b.Reset()
	return b
}

// ExecuteWithRecovery executes the instruction once and, if it fails with a
// recoverable error, applies the strategies for that error before each of up
// to MaxRetries further attempts.
func (uc *UseCase) ExecuteWithRecovery(ctx context.Context, req entity.NLActionRequest, cfg entity.RecoveryConfig) *entity.RecoveryResult {
	start := time.Now()

	last := uc.Execute(ctx, req)
	result := &entity.RecoveryResult{Response: last, TotalAttempts: 1}

	if last.Success || cfg.MaxRetries <= 0 || len(strategiesFor(last.ErrorCode, cfg)) == 0 {
		result.TotalDuration = time.Since(start)
		return result
	}
	result.RecoveryAttempted = true

	logger := uc.logger.WithFields(map[string]any{
		"instruction": req.Instruction,
		"max_retries": cfg.MaxRetries,
	})
	logger.Info("Starting recovery", "error_code", last.ErrorCode)

	operation := func() (*entity.ActionResponse, error) {
		strategies := strategiesFor(last.ErrorCode, cfg)
		if len(strategies) == 0 {
			return last, backoff.Permanent(fmt.Errorf("%w: %s", errNotRecoverable, last.ErrorCode))
		}
		result.TotalAttempts++

		for _, s := range strategies {
			sr, resp := uc.applyStrategy(ctx, req, last, s, cfg)
			result.StrategyResults = append(result.StrategyResults, sr)
			logger.Debug("Recovery strategy applied",
				"strategy", sr.Strategy,
				"status", sr.Status,
				"message", sr.Message,
			)
			if resp != nil && resp.Success {
				last = resp
				return last, nil
			}
		}

		last = uc.Execute(ctx, req)
		if last.Success {
			return last, nil
		}
		return last, fmt.Errorf("attempt %d failed: %s", result.TotalAttempts, last.ErrorCode)
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(newBackOff(cfg)),
		backoff.WithMaxTries(uint(cfg.MaxRetries)),
	)

	result.Response = last
	result.TotalDuration = time.Since(start)
	if err != nil {
		logger.Warn("Recovery exhausted",
			"attempts", result.TotalAttempts,
			"error_code", last.ErrorCode,
			"error", err,
		)
	} else {
		logger.Info("Recovery succeeded", "attempts", result.TotalAttempts)
	}
	return result
}

// applyStrategy runs one strategy. It returns a response only when the
// strategy itself performed the action.
func (uc *UseCase) applyStrategy(
	ctx context.Context,
	req entity.NLActionRequest,
	last *entity.ActionResponse,
	strategy entity.RecoveryStrategy,
	cfg entity.RecoveryConfig,
) (entity.StrategyResult, *entity.ActionResponse) {
	start := time.Now()
	sr := entity.StrategyResult{Strategy: strategy}
	var resp *entity.ActionResponse

	done := func(status entity.StrategyStatus, msg string) (entity.StrategyResult, *entity.ActionResponse) {
		sr.Status = status
		sr.Message = msg
		sr.Duration = time.Since(start)
		return sr, resp
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = uc.cfg.DefaultTimeout
	}

	switch strategy {
	case entity.StrategyRetry:
		return done(entity.StrategySuccess, "retrying the action")

	case entity.StrategyRefresh:
		if uc.inventory == nil {
			return done(entity.StrategySkipped, "no element inventory configured")
		}
		if !uc.refresh(ctx, uc.logger) {
			return done(entity.StrategyFailed, "element inventory refresh failed")
		}
		return done(entity.StrategySuccess, fmt.Sprintf("index refreshed with %d elements", len(uc.engine.Elements())))

	case entity.StrategyAlternativeElement:
		alt, ok := pickAlternative(last, cfg.AlternativeMinConfidence)
		if !ok {
			return done(entity.StrategySkipped, "no alternative meets the minimum confidence")
		}
		resp = uc.executeOn(ctx, req, last.ParsedAction, alt)
		if resp.Success {
			return done(entity.StrategySuccess, fmt.Sprintf("used alternative %q", alt.Element.ID))
		}
		return done(entity.StrategyFailed, resp.Error)
	}

	if uc.backend == nil {
		return done(entity.StrategySkipped, "no action backend configured")
	}

	switch strategy {
	case entity.StrategyWaitVisible, entity.StrategyWaitEnabled:
		id := candidateID(last)
		if id == "" {
			return done(entity.StrategySkipped, "no candidate element to wait for")
		}
		condition := "visible"
		if strategy == entity.StrategyWaitEnabled {
			condition = "enabled"
		}
		var res *output.WaitResult
		err := safely(func() (err error) {
			res, err = uc.backend.WaitFor(ctx, id, output.WaitOptions{Condition: condition, Timeout: timeout})
			return err
		})
		if err != nil {
			return done(entity.StrategyFailed, err.Error())
		}
		if res == nil || !res.Met {
			return done(entity.StrategyFailed, fmt.Sprintf("%q did not become %s", id, condition))
		}
		return done(entity.StrategySuccess, fmt.Sprintf("%q is %s", id, condition))

	case entity.StrategyScrollIntoView:
		id := candidateID(last)
		request := output.ActionRequest{RequestID: last.RequestID, Action: entity.ActionScroll, Timeout: timeout}
		if id == "" {
			request.ScrollDirection = entity.ScrollDown
		}
		if err := uc.act(ctx, id, request); err != nil {
			return done(entity.StrategyFailed, err.Error())
		}
		if id == "" {
			return done(entity.StrategyPartial, "scrolled the page down")
		}
		return done(entity.StrategySuccess, fmt.Sprintf("scrolled %q into view", id))

	case entity.StrategyDismissOverlay:
		closer, ok := uc.findDismissControl()
		if !ok {
			return done(entity.StrategySkipped, "no dismissable overlay found")
		}
		request := output.ActionRequest{RequestID: last.RequestID, Action: entity.ActionClick, Timeout: timeout}
		if err := uc.act(ctx, closer.ID, request); err != nil {
			return done(entity.StrategyFailed, err.Error())
		}
		return done(entity.StrategySuccess, fmt.Sprintf("clicked %q", describe(closer)))
	}

	return done(entity.StrategySkipped, fmt.Sprintf("unknown strategy %q", strategy))
}

// executeOn performs the parsed action on an explicitly chosen element,
// bypassing search and the confidence gate.
func (uc *UseCase) executeOn(
	ctx context.Context,
	req entity.NLActionRequest,
	action *entity.ParsedAction,
	target entity.SearchResult,
) *entity.ActionResponse {
	r := uc.newRun(req)
	r.resp.ParsedAction = action
	r.resp.ExecutedAction = nlparse.DescribeAction(action)
	return uc.invoke(ctx, r, action, &target, nil)
}

func pickAlternative(last *entity.ActionResponse, minConfidence float64) (entity.SearchResult, bool) {
	if last.ParsedAction == nil {
		return entity.SearchResult{}, false
	}
	for _, alt := range last.Alternatives {
		if alt.Confidence >= minConfidence {
			return alt, true
		}
	}
	return entity.SearchResult{}, false
}

func candidateID(last *entity.ActionResponse) string {
	if last.ElementUsed != nil {
		return last.ElementUsed.ID
	}
	if len(last.Alternatives) > 0 {
		return last.Alternatives[0].Element.ID
	}
	return ""
}

func (uc *UseCase) act(ctx context.Context, elementID string, request output.ActionRequest) error {
	return safely(func() error {
		res, err := uc.backend.ExecuteAction(ctx, elementID, request)
		if err != nil {
			return err
		}
		if res == nil || !res.Success {
			msg := fmt.Sprintf("%s failed", request.Action)
			if res != nil && res.Error != "" {
				msg = res.Error
			}
			return errors.New(msg)
		}
		return nil
	})
}

var dismissWords = []string{"close", "cancel", "dismiss", "no thanks", "got it", "×", "✕"}

// findDismissControl looks for a visible close control inside a visible dialog.
func (uc *UseCase) findDismissControl() (entity.SearchableElement, bool) {
	elements := uc.engine.Elements()
	for _, b := range FindBlockers(elements) {
		if b.Kind != blockerDialog {
			continue
		}
		dialog, ok := uc.engine.Element(b.ElementID)
		if !ok {
			continue
		}
		for _, el := range elements {
			if el.ID == dialog.ID || !el.State.Visible || el.State.Rect.IsZero() {
				continue
			}
			if !dialog.State.Rect.IsZero() && !dialog.State.Rect.Contains(el.State.Rect) {
				continue
			}
			if isDismissControl(el) {
				return el, true
			}
		}
	}
	return entity.SearchableElement{}, false
}

func isDismissControl(el entity.SearchableElement) bool {
	for _, s := range []string{el.Label, el.Text, el.AccessibleName} {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		for _, w := range dismissWords {
			if s == w || strings.HasPrefix(s, w+" ") {
				return true
			}
		}
	}
	return false
}

func safely(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("action backend panicked: %v", p)
		}
	}()
	return fn()
}
