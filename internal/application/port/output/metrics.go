package output

import "time"

type MetricsPort interface {
	SearchPerformed(results int, duration time.Duration)
	ActionExecuted(action string, outcome string, duration time.Duration)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) SearchPerformed(int, time.Duration) {}
func (NopMetrics) ActionExecuted(string, string, time.Duration) {}
