package output

import "intent-resolver/internal/domain/entity"

// AnnotationSource looks up externally supplied metadata for an element.
type AnnotationSource interface {
	Annotation(elementID string) (entity.ElementAnnotation, bool)
}
