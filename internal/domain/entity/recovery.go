package entity

import "time"

type RecoveryStrategy string

const (
	StrategyRetry              RecoveryStrategy = "retry"
	StrategyWaitVisible        RecoveryStrategy = "wait_visible"
	StrategyWaitEnabled        RecoveryStrategy = "wait_enabled"
	StrategyScrollIntoView     RecoveryStrategy = "scroll_into_view"
	StrategyDismissOverlay     RecoveryStrategy = "dismiss_overlay"
	StrategyAlternativeElement RecoveryStrategy = "alternative_element"
	StrategyRefresh            RecoveryStrategy = "refresh"
)

type StrategyStatus string

const (
	StrategySuccess StrategyStatus = "success"
	StrategyFailed  StrategyStatus = "failed"
	StrategySkipped StrategyStatus = "skipped"
	StrategyPartial StrategyStatus = "partial"
)

type StrategyResult struct {
	Strategy RecoveryStrategy `json:"strategyName"`
	Status   StrategyStatus   `json:"status"`
	Message  string           `json:"message"`
	Duration time.Duration    `json:"durationMs"`
}

type RecoveryConfig struct {
	MaxRetries         int                `json:"maxRetries" yaml:"maxRetries" validate:"gte=0,lte=10"`
	RetryDelay         time.Duration      `json:"retryDelay" yaml:"retryDelay" validate:"gte=0"`
	ExponentialBackoff bool               `json:"exponentialBackoff" yaml:"exponentialBackoff"`
	Strategies         []RecoveryStrategy `json:"strategies" yaml:"strategies"`
	// Minimum confidence an alternative needs before alternative_element will act on it.
	AlternativeMinConfidence float64 `json:"alternativeMinConfidence" yaml:"alternativeMinConfidence" validate:"gte=0,lte=1"`
}

type RecoveryResult struct {
	Response          *ActionResponse  `json:"response"`
	RecoveryAttempted bool             `json:"recoveryAttempted"`
	StrategyResults   []StrategyResult `json:"strategyResults,omitempty"`
	TotalAttempts     int              `json:"totalAttempts"`
	TotalDuration     time.Duration    `json:"totalDurationMs"`
}
