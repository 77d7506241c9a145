package output

import "intent-resolver/internal/domain/entity"

// PresenterPort renders resolver results for a human.
type PresenterPort interface {
	ShowParsed(action *entity.ParsedAction)
	ShowSearch(resp entity.SearchResponse)
	ShowResponse(resp *entity.ActionResponse)
	ShowRecovery(res *entity.RecoveryResult)
	ShowErrorContext(ec *entity.ErrorContext)
}
