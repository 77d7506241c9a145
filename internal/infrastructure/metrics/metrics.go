package metrics

import (
	"fmt"
	"net/http"
	"time"

	"intent-resolver/internal/application/port/output"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ output.MetricsPort = (*Prometheus)(nil)

const namespace = "resolver"

// Prometheus records search and execute metrics on its own registry, so
// several instances (one per test, for example) never collide.
type Prometheus struct {
	registry *prometheus.Registry

	searchTotal     prometheus.Counter
	searchResults   prometheus.Histogram
	searchDuration  prometheus.Histogram
	executeTotal    *prometheus.CounterVec
	executeDuration *prometheus.HistogramVec
}

func New() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		searchTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_total",
			Help:      "Total element searches",
		}),
		searchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Element search latency",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		executeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "execute_total",
			Help:      "Executed instructions by action and outcome",
		}, []string{"action", "outcome"}),
		executeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execute_duration_seconds",
			Help:      "End-to-end instruction latency by action",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"action"}),
	}
}

func (p *Prometheus) SearchPerformed(results int, duration time.Duration) {
	p.searchTotal.Inc()
	p.searchResults.Observe(float64(results))
	p.searchDuration.Observe(duration.Seconds())
}

func (p *Prometheus) ActionExecuted(action string, outcome string, duration time.Duration) {
	p.executeTotal.WithLabelValues(action, outcome).Inc()
	p.executeDuration.WithLabelValues(action).Observe(duration.Seconds())
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Summary flattens the registry into "name{labels}" → value. Counters report
// their value, histograms their sample count.
func (p *Prometheus) Summary() (map[string]float64, error) {
	families, err := p.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				key += "{"
				for i, l := range labels {
					if i > 0 {
						key += ","
					}
					key += l.GetName() + "=" + l.GetValue()
				}
				key += "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}
