package input

import "intent-resolver/internal/domain/entity"

type ElementSearcher interface {
	UpdateElements(elements []entity.Element)
	Search(criteria entity.SearchCriteria) entity.SearchResponse
	Elements() []entity.SearchableElement
}
