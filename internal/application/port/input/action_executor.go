package input

import (
	"context"

	"intent-resolver/internal/domain/entity"
)

type ActionExecutor interface {
	Execute(ctx context.Context, req entity.NLActionRequest) *entity.ActionResponse
	ExecuteWithRecovery(ctx context.Context, req entity.NLActionRequest, cfg entity.RecoveryConfig) *entity.RecoveryResult
	ExecuteSequence(ctx context.Context, instructions string, req entity.NLActionRequest) []*entity.ActionResponse
}
