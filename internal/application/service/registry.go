package service

import (
	"sort"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/domain/entity"
)

var _ output.AnnotationSource = (*AnnotationRegistry)(nil)

// AnnotationRegistry holds per-element annotations keyed by element ID.
// Registering an ID again replaces its annotation.
type AnnotationRegistry struct {
	annotations map[string]entity.ElementAnnotation
}

func NewAnnotationRegistry() *AnnotationRegistry {
	return &AnnotationRegistry{
		annotations: make(map[string]entity.ElementAnnotation),
	}
}

func (r *AnnotationRegistry) Register(a entity.ElementAnnotation) {
	if a.ElementID == "" {
		return
	}
	r.annotations[a.ElementID] = a
}

func (r *AnnotationRegistry) RegisterAll(list []entity.ElementAnnotation) {
	for _, a := range list {
		r.Register(a)
	}
}

func (r *AnnotationRegistry) Remove(elementID string) {
	delete(r.annotations, elementID)
}

func (r *AnnotationRegistry) Annotation(elementID string) (entity.ElementAnnotation, bool) {
	a, ok := r.annotations[elementID]
	return a, ok
}

func (r *AnnotationRegistry) All() []entity.ElementAnnotation {
	result := make([]entity.ElementAnnotation, 0, len(r.annotations))
	for _, a := range r.annotations {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ElementID < result[j].ElementID
	})
	return result
}

func (r *AnnotationRegistry) Len() int {
	return len(r.annotations)
}
