package entity

import "time"

// SearchCriteria is a sparse query: empty strings and nil pointers mean "dimension absent".
type SearchCriteria struct {
	Text           string   `json:"text,omitempty"`
	TextContains   string   `json:"textContains,omitempty"`
	AccessibleName string   `json:"accessibleName,omitempty"`
	Role           string   `json:"role,omitempty"`
	Type           string   `json:"type,omitempty"`
	// TypeFamily matches related types, e.g. "input" covers email inputs.
	// Ignored when Type is set.
	TypeFamily     string   `json:"typeFamily,omitempty"`
	Near           string   `json:"near,omitempty"`
	Within         string   `json:"within,omitempty"`
	IDPattern      string   `json:"idPattern,omitempty"`
	Placeholder    string   `json:"placeholder,omitempty"`
	Title          string   `json:"title,omitempty"`
	Fuzzy          *bool    `json:"fuzzy,omitempty"`
	FuzzyThreshold *float64 `json:"fuzzyThreshold,omitempty"`
	IncludeHidden  bool     `json:"includeHidden,omitempty"`
}

func (c SearchCriteria) FuzzyEnabled() bool {
	return c.Fuzzy == nil || *c.Fuzzy
}

// Query returns the free-text part of the criteria used for alias matching.
func (c SearchCriteria) Query() string {
	switch {
	case c.Text != "":
		return c.Text
	case c.TextContains != "":
		return c.TextContains
	case c.AccessibleName != "":
		return c.AccessibleName
	case c.Placeholder != "":
		return c.Placeholder
	case c.Title != "":
		return c.Title
	}
	return ""
}

// SearchScores holds per-dimension sub-scores. A nil field means the dimension was not evaluated.
type SearchScores struct {
	Text          *float64 `json:"text,omitempty"`
	Contains      *float64 `json:"contains,omitempty"`
	Accessibility *float64 `json:"accessibility,omitempty"`
	Role          *float64 `json:"role,omitempty"`
	Type          *float64 `json:"type,omitempty"`
	Spatial       *float64 `json:"spatial,omitempty"`
	IDPattern     *float64 `json:"idPattern,omitempty"`
	Alias         *float64 `json:"alias,omitempty"`
}

type SearchResult struct {
	Element      SearchableElement `json:"element"`
	Confidence   float64           `json:"confidence"`
	MatchReasons []string          `json:"matchReasons"`
	Scores       SearchScores      `json:"scores"`
}

type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	BestMatch    *SearchResult  `json:"bestMatch,omitempty"`
	ScannedCount int            `json:"scannedCount"`
	Duration     time.Duration  `json:"durationMs"`
	Criteria     SearchCriteria `json:"criteria"`
	Timestamp    time.Time      `json:"timestamp"`
}

func Float(v float64) *float64 {
	return &v
}

func Bool(v bool) *bool {
	return &v
}
