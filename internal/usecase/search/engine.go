package search

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"intent-resolver/internal/application/port/input"
	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
	"intent-resolver/internal/domain/fuzzy"
)

var _ input.ElementSearcher = (*Engine)(nil)

// Engine ranks a cached set of searchable elements against search criteria.
//
// The cache is rebuilt wholesale by UpdateElements. Engine does no locking:
// callers must not run UpdateElements concurrently with Search.
type Engine struct {
	cfg         Config
	logger      output.LoggerPort
	annotations output.AnnotationSource
	metrics     output.MetricsPort

	elements  []entity.SearchableElement
	byID      map[string]int
	indexedAt time.Time
}

// New creates an engine. logger, annotations and metrics may be nil.
func New(
	cfg Config,
	logger output.LoggerPort,
	annotations output.AnnotationSource,
	metrics output.MetricsPort,
) *Engine {
	if logger == nil {
		logger = output.NopLogger{}
	}
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &Engine{
		cfg:         cfg.withDefaults(),
		logger:      logger,
		annotations: annotations,
		metrics:     metrics,
		byID:        make(map[string]int),
	}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// UpdateElements replaces the cache with a fresh conversion of elements.
// Elements with a malformed variant are skipped.
func (e *Engine) UpdateElements(elements []entity.Element) {
	records := make([]entity.SearchableElement, 0, len(elements))
	byID := make(map[string]int, len(elements))

	skipped := 0
	for _, el := range elements {
		s, ok := ToSearchable(el, len(records), e.cfg.MaxAliases)
		if !ok {
			skipped++
			continue
		}
		mergeAnnotation(&s, e.annotations)
		if _, dup := byID[s.ID]; !dup && s.ID != "" {
			byID[s.ID] = len(records)
		}
		records = append(records, s)
	}

	e.elements = records
	e.byID = byID
	e.indexedAt = time.Now()

	e.logger.Debug("Search index rebuilt", "elements", len(records), "skipped", skipped)
}

// Elements returns a copy of the cached records in input order.
func (e *Engine) Elements() []entity.SearchableElement {
	out := make([]entity.SearchableElement, len(e.elements))
	copy(out, e.elements)
	return out
}

func (e *Engine) Element(id string) (entity.SearchableElement, bool) {
	i, ok := e.byID[id]
	if !ok {
		return entity.SearchableElement{}, false
	}
	return e.elements[i], true
}

func (e *Engine) IndexedAt() time.Time {
	return e.indexedAt
}

// Search scores every cached element against criteria and returns those at
// or above the threshold, best first. It never fails: no match is an empty
// result set with a nil BestMatch.
func (e *Engine) Search(criteria entity.SearchCriteria) entity.SearchResponse {
	start := time.Now()

	threshold := e.cfg.Threshold
	if criteria.FuzzyThreshold != nil {
		threshold = fuzzy.Clamp(*criteria.FuzzyThreshold)
	}

	q := e.prepare(criteria)
	includeHidden := criteria.IncludeHidden || (criteria.Fuzzy != nil && *criteria.Fuzzy)

	var container *entity.SearchableElement
	if criteria.Within != "" {
		container = e.resolveReference(criteria.Within, q.fuzzy)
	}

	results := make([]entity.SearchResult, 0)
	for i := range e.elements {
		el := &e.elements[i]

		if !el.State.Visible && !includeHidden {
			continue
		}
		if q.anchor != nil && el.ID == q.anchor.ID {
			continue
		}
		if criteria.Within != "" {
			if container == nil || el.ID == container.ID || el.State.Rect.IsZero() ||
				!container.State.Rect.Contains(el.State.Rect) {
				continue
			}
		}

		res := q.score(el)
		if res.Confidence < threshold || res.Confidence == 0 {
			continue
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	if len(results) > e.cfg.MaxResults {
		results = results[:e.cfg.MaxResults]
	}

	resp := entity.SearchResponse{
		Results:      results,
		ScannedCount: len(e.elements),
		Duration:     time.Since(start),
		Criteria:     criteria,
		Timestamp:    time.Now(),
	}
	if len(results) > 0 {
		best := results[0]
		resp.BestMatch = &best
	}

	e.metrics.SearchPerformed(len(results), resp.Duration)
	e.logger.Debug("Search completed",
		"query", criteria.Query(),
		"role", criteria.Role,
		"type", criteria.Type,
		"type_family", criteria.TypeFamily,
		"threshold", threshold,
		"results", len(results),
		"scanned", resp.ScannedCount,
		"duration", resp.Duration,
	)

	return resp
}

func (e *Engine) prepare(criteria entity.SearchCriteria) *query {
	q := &query{
		criteria: criteria,
		weights:  e.cfg.Weights,
		fuzzy:    e.cfg.Fuzzy,
		useFuzzy: criteria.FuzzyEnabled(),
		radius:   e.cfg.NearRadius,
		text:     criteria.Query(),
	}

	if criteria.Near != "" {
		q.anchor = e.resolveReference(criteria.Near, q.fuzzy)
		if q.anchor == nil {
			e.logger.Debug("Near reference not resolved", "near", criteria.Near)
		}
	}

	if criteria.IDPattern != "" {
		if re, err := regexp.Compile("(?i)" + criteria.IDPattern); err == nil {
			q.idRe = re
		} else {
			e.logger.Debug("Invalid id pattern, using subsequence match", "pattern", criteria.IDPattern, "error", err)
		}
	}

	return q
}

// resolveReference finds the element a Near or Within value names: by id
// first, then by exact text or label, then by the best fuzzy label match.
func (e *Engine) resolveReference(ref string, cfg fuzzy.Config) *entity.SearchableElement {
	if i, ok := e.byID[ref]; ok {
		return &e.elements[i]
	}

	want := norm(ref)
	labels := make([]string, len(e.elements))
	for i := range e.elements {
		el := &e.elements[i]
		if norm(el.Text) == want || norm(el.Label) == want {
			return el
		}
		labels[i] = firstNonEmpty(el.Label, el.Text)
	}

	if m := fuzzy.FindBestMatch(ref, labels, cfg); m.Found() {
		return &e.elements[m.Index]
	}
	return nil
}

func (e *Engine) FindByText(text string) entity.SearchResponse {
	return e.Search(entity.SearchCriteria{Text: text})
}

// FindByRole matches role, and the accessible name when name is not empty.
func (e *Engine) FindByRole(role, name string) entity.SearchResponse {
	return e.Search(entity.SearchCriteria{Role: role, AccessibleName: name})
}

// FindNear ranks elements matching criteria by proximity to the anchor element.
func (e *Engine) FindNear(anchor string, criteria entity.SearchCriteria) entity.SearchResponse {
	criteria.Near = strings.TrimSpace(anchor)
	return e.Search(criteria)
}

// FindWithin restricts criteria to elements geometrically inside the container.
func (e *Engine) FindWithin(container string, criteria entity.SearchCriteria) entity.SearchResponse {
	criteria.Within = strings.TrimSpace(container)
	return e.Search(criteria)
}
