package entity

import "time"

type ErrorCode string

const (
	ErrParse           ErrorCode = "PARSE_ERROR"
	ErrValidation      ErrorCode = "VALIDATION_ERROR"
	ErrElementNotFound ErrorCode = "ELEMENT_NOT_FOUND"
	ErrLowConfidence   ErrorCode = "LOW_CONFIDENCE"
	ErrActionFailed    ErrorCode = "ACTION_FAILED"
)

func (c ErrorCode) String() string {
	return string(c)
}

type NLActionRequest struct {
	Instruction         string        `json:"instruction"`
	Context             string        `json:"context,omitempty"`
	Timeout             time.Duration `json:"timeout,omitempty"`
	ConfidenceThreshold *float64      `json:"confidenceThreshold,omitempty"`
	MaxAlternatives     int           `json:"maxAlternatives,omitempty"`
}

type ActionResponse struct {
	RequestID      string             `json:"requestId"`
	Success        bool               `json:"success"`
	ExecutedAction string             `json:"executedAction"`
	ParsedAction   *ParsedAction      `json:"parsedAction,omitempty"`
	ElementUsed    *SearchableElement `json:"elementUsed,omitempty"`
	Confidence     float64            `json:"confidence"`
	ElementState   *ElementState      `json:"elementState,omitempty"`
	Duration       time.Duration      `json:"durationMs"`
	Timestamp      time.Time          `json:"timestamp"`
	Error          string             `json:"error,omitempty"`
	ErrorCode      ErrorCode          `json:"errorCode,omitempty"`
	Suggestions    []string           `json:"suggestions,omitempty"`
	Alternatives   []SearchResult     `json:"alternatives,omitempty"`
}

type SuggestionPriority int

const (
	PriorityHigh   SuggestionPriority = 1
	PriorityMedium SuggestionPriority = 2
	PriorityLow    SuggestionPriority = 3
)

func (p SuggestionPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

type RecoverySuggestion struct {
	Action     string             `json:"action"`
	Command    string             `json:"command,omitempty"`
	Confidence float64            `json:"confidence"`
	Priority   SuggestionPriority `json:"priority"`
}

type NearestMatch struct {
	Element         SearchableElement `json:"element"`
	Confidence      float64           `json:"confidence"`
	RejectionReason string            `json:"rejectionReason"`
}

type PageBlocker struct {
	ElementID   string `json:"elementId"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

type ErrorContext struct {
	ErrorCode        ErrorCode            `json:"errorCode"`
	Message          string               `json:"message"`
	Instruction      string               `json:"instruction"`
	CandidateCount   int                  `json:"candidateCount"`
	NearestMatch     *NearestMatch        `json:"nearestMatch,omitempty"`
	Blockers         []PageBlocker        `json:"blockers,omitempty"`
	Suggestions      []RecoverySuggestion `json:"suggestions"`
	RetryRecommended bool                 `json:"retryRecommended"`
	Screenshot       *Screenshot          `json:"-"`
	Timestamp        time.Time            `json:"timestamp"`
}
