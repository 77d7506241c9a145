package executor

import (
	"context"
	"testing"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRecovery(retries int) entity.RecoveryConfig {
	cfg := DefaultRecoveryConfig()
	cfg.MaxRetries = retries
	cfg.RetryDelay = 0
	cfg.ExponentialBackoff = false
	return cfg
}

func strategyStatus(results []entity.StrategyResult, s entity.RecoveryStrategy) entity.StrategyStatus {
	for _, r := range results {
		if r.Strategy == s {
			return r.Status
		}
	}
	return ""
}

func TestStrategiesFor(t *testing.T) {
	tests := []struct {
		code entity.ErrorCode
		want []entity.RecoveryStrategy
	}{
		{entity.ErrElementNotFound, []entity.RecoveryStrategy{
			entity.StrategyWaitVisible, entity.StrategyScrollIntoView, entity.StrategyAlternativeElement, entity.StrategyRefresh,
		}},
		{entity.ErrLowConfidence, []entity.RecoveryStrategy{entity.StrategyAlternativeElement}},
		{entity.ErrActionFailed, []entity.RecoveryStrategy{
			entity.StrategyRetry, entity.StrategyWaitEnabled, entity.StrategyDismissOverlay,
		}},
		{entity.ErrParse, nil},
		{entity.ErrValidation, nil},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, StrategiesFor(tt.code))
		})
	}
}

func TestDefaultRecoveryConfig(t *testing.T) {
	cfg := DefaultRecoveryConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelay)
	assert.True(t, cfg.ExponentialBackoff)
	assert.Empty(t, cfg.Strategies)
}

func TestExecuteWithRecovery_SuccessNeedsNoRecovery(t *testing.T) {
	uc := newUseCase(newFakeBackend(), defaultPage()...)

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "click Submit"}, fastRecovery(3))

	assert.True(t, res.Response.Success)
	assert.False(t, res.RecoveryAttempted)
	assert.Equal(t, 1, res.TotalAttempts)
	assert.Empty(t, res.StrategyResults)
}

func TestExecuteWithRecovery_ParseErrorIsNotRecovered(t *testing.T) {
	uc := newUseCase(newFakeBackend(), defaultPage()...)

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "xyzzy plugh"}, fastRecovery(3))

	assert.False(t, res.Response.Success)
	assert.Equal(t, entity.ErrParse, res.Response.ErrorCode)
	assert.False(t, res.RecoveryAttempted)
	assert.Equal(t, 1, res.TotalAttempts)
}

func TestExecuteWithRecovery_AlternativeElement(t *testing.T) {
	backend := newFakeBackend()
	uc := newUseCase(backend, defaultPage()...)
	cfg := fastRecovery(2)
	cfg.AlternativeMinConfidence = 0

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{
		Instruction:         "click Sbmit",
		ConfidenceThreshold: entity.Float(0.99),
	}, cfg)

	require.True(t, res.Response.Success, res.Response.Error)
	assert.True(t, res.RecoveryAttempted)
	assert.Equal(t, 2, res.TotalAttempts)
	assert.Equal(t, entity.StrategySuccess, strategyStatus(res.StrategyResults, entity.StrategyAlternativeElement))
	require.NotNil(t, res.Response.ElementUsed)
	assert.Equal(t, "submit-btn", res.Response.ElementUsed.ID)
	assert.Equal(t, 1, backend.clicks("submit-btn"))
}

func TestExecuteWithRecovery_WaitEnabledThenRetry(t *testing.T) {
	backend := newFakeBackend()
	failures := 1
	backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
		if failures > 0 {
			failures--
			return &output.ActionResult{Success: false, Error: "element is disabled"}, nil
		}
		return &output.ActionResult{Success: true}, nil
	}
	uc := newUseCase(backend, defaultPage()...)

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "click Submit"}, fastRecovery(3))

	require.True(t, res.Response.Success, res.Response.Error)
	assert.True(t, res.RecoveryAttempted)
	assert.Equal(t, 2, res.TotalAttempts)
	assert.Equal(t, entity.StrategySuccess, strategyStatus(res.StrategyResults, entity.StrategyWaitEnabled))
	assert.Equal(t, entity.StrategySkipped, strategyStatus(res.StrategyResults, entity.StrategyDismissOverlay))

	require.NotEmpty(t, backend.waits)
	assert.Equal(t, "submit-btn", backend.waits[0].elementID)
	assert.Equal(t, "enabled", backend.waits[0].opts.Condition)
}

func TestExecuteWithRecovery_DismissOverlay(t *testing.T) {
	backend := newFakeBackend()
	closed := false
	backend.onAction = func(elementID string, _ output.ActionRequest) (*output.ActionResult, error) {
		switch elementID {
		case "cookie-close":
			closed = true
		case "submit-btn":
			if !closed {
				return &output.ActionResult{Success: false, Error: "click intercepted by another element"}, nil
			}
		}
		return &output.ActionResult{Success: true}, nil
	}
	uc := newUseCase(backend,
		dialog("cookie-dialog", "Cookie consent", entity.Rect{X: 0, Y: 0, Width: 400, Height: 300}),
		button("cookie-close", "Close", entity.Rect{X: 350, Y: 10, Width: 30, Height: 20}),
		button("submit-btn", "Submit", entity.Rect{X: 500, Y: 500, Width: 80, Height: 30}),
	)

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "click Submit"}, fastRecovery(2))

	require.True(t, res.Response.Success, res.Response.Error)
	assert.True(t, closed)
	assert.Equal(t, entity.StrategySuccess, strategyStatus(res.StrategyResults, entity.StrategyDismissOverlay))
	assert.Equal(t, 2, backend.clicks("submit-btn"))
}

func TestExecuteWithRecovery_Exhausted(t *testing.T) {
	backend := newFakeBackend()
	backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
		return &output.ActionResult{Success: false, Error: "element is covered"}, nil
	}
	uc := newUseCase(backend, defaultPage()...)

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "click Submit"}, fastRecovery(2))

	assert.False(t, res.Response.Success)
	assert.Equal(t, entity.ErrActionFailed, res.Response.ErrorCode)
	assert.Equal(t, "element is covered", res.Response.Error)
	assert.True(t, res.RecoveryAttempted)
	assert.Equal(t, 3, res.TotalAttempts)
	assert.Equal(t, 3, backend.clicks("submit-btn"))
}

func TestExecuteWithRecovery_StrategyFilter(t *testing.T) {
	backend := newFakeBackend()
	backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
		return &output.ActionResult{Success: false, Error: "nope"}, nil
	}
	uc := newUseCase(backend, defaultPage()...)
	cfg := fastRecovery(1)
	cfg.Strategies = []entity.RecoveryStrategy{entity.StrategyRetry}

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "click Submit"}, cfg)

	require.Len(t, res.StrategyResults, 1)
	assert.Equal(t, entity.StrategyRetry, res.StrategyResults[0].Strategy)
	assert.Empty(t, backend.waits)
}

func TestExecuteWithRecovery_ZeroRetries(t *testing.T) {
	backend := newFakeBackend()
	backend.onAction = func(string, output.ActionRequest) (*output.ActionResult, error) {
		return &output.ActionResult{Success: false, Error: "nope"}, nil
	}
	uc := newUseCase(backend, defaultPage()...)

	res := uc.ExecuteWithRecovery(context.Background(), entity.NLActionRequest{Instruction: "click Submit"}, fastRecovery(0))

	assert.False(t, res.RecoveryAttempted)
	assert.Equal(t, 1, res.TotalAttempts)
}
