package interfaces

import (
	"context"

	"github.com/m-mizutani/hotfixer/pkg/domain/model"
)

// ConflictNotifier announces a cherry-pick conflict outside of GitHub.
type ConflictNotifier interface {
	NotifyConflict(ctx context.Context, event *model.TriggerEvent, release *model.ReleaseBranch, conflict *model.ConflictBranch) error
}
