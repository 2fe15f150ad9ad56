package interfaces

import (
	"context"

	"github.com/m-mizutani/hotfixer/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// HotfixUseCase runs the hotfix pipeline for one merged pull request.
type HotfixUseCase interface {
	Run(ctx context.Context, event *model.TriggerEvent) (*model.HotfixResult, error)
}
