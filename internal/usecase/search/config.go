package search

import (
	"intent-resolver/internal/domain/alias"
	"intent-resolver/internal/domain/fuzzy"
)

const (
	DefaultThreshold  = 0.7
	DefaultMaxResults = 20
	DefaultNearRadius = 200.0
)

// Weights are per-dimension contributions to a candidate's confidence.
// They need not sum to 1: confidence is normalised by the weight actually used.
type Weights struct {
	Text          float64 `json:"text" yaml:"text" validate:"gte=0"`
	Accessibility float64 `json:"accessibility" yaml:"accessibility" validate:"gte=0"`
	Role          float64 `json:"role" yaml:"role" validate:"gte=0"`
	Type          float64 `json:"type" yaml:"type" validate:"gte=0"`
	Spatial       float64 `json:"spatial" yaml:"spatial" validate:"gte=0"`
	IDPattern     float64 `json:"idPattern" yaml:"idPattern" validate:"gte=0"`
	Alias         float64 `json:"alias" yaml:"alias" validate:"gte=0"`
}

func DefaultWeights() Weights {
	return Weights{
		Text:          0.35,
		Accessibility: 0.25,
		Role:          0.15,
		Type:          0.15,
		Spatial:       0.10,
		IDPattern:     0.10,
		Alias:         0.15,
	}
}

type Config struct {
	Threshold  float64      `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`
	MaxResults int          `json:"maxResults" yaml:"maxResults" validate:"gt=0"`
	NearRadius float64      `json:"nearRadius" yaml:"nearRadius" validate:"gt=0"`
	MaxAliases int          `json:"maxAliases" yaml:"maxAliases" validate:"gt=0"`
	Weights    Weights      `json:"weights" yaml:"weights"`
	Fuzzy      fuzzy.Config `json:"fuzzy" yaml:"fuzzy"`
}

func DefaultConfig() Config {
	return Config{
		Threshold:  DefaultThreshold,
		MaxResults: DefaultMaxResults,
		NearRadius: DefaultNearRadius,
		MaxAliases: alias.DefaultMaxAliases,
		Weights:    DefaultWeights(),
		Fuzzy:      fuzzy.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.NearRadius <= 0 {
		c.NearRadius = d.NearRadius
	}
	if c.MaxAliases <= 0 {
		c.MaxAliases = d.MaxAliases
	}
	if c.Fuzzy == (fuzzy.Config{}) {
		c.Fuzzy = d.Fuzzy
	}
	c.Threshold = fuzzy.Clamp(c.Threshold)
	return c
}
