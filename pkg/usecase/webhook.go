package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/utils/async"
)

// DispatchFunc runs a hotfix outside the webhook request.
type DispatchFunc func(ctx context.Context, handler func(ctx context.Context) error)

type webhookUseCase struct {
	hotfix       interfaces.HotfixUseCase
	triggerLabel string
	timeout      time.Duration
	dispatch     DispatchFunc
}

// WebhookOption configures the webhook use case.
type WebhookOption func(*webhookUseCase)

// WithTriggerLabel only starts a hotfix for pull requests carrying label.
func WithTriggerLabel(label string) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.triggerLabel = label
	}
}

// WithTimeout sets the deadline of a single hotfix run.
func WithTimeout(timeout time.Duration) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.timeout = timeout
	}
}

// WithDispatcher replaces the background dispatcher.
func WithDispatcher(dispatch DispatchFunc) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.dispatch = dispatch
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(hotfix interfaces.HotfixUseCase, opts ...WebhookOption) interfaces.WebhookUseCase {
	uc := &webhookUseCase{
		hotfix:  hotfix,
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.dispatch == nil {
		timeout := uc.timeout
		uc.dispatch = func(ctx context.Context, handler func(ctx context.Context) error) {
			async.Dispatch(ctx, timeout, handler)
		}
	}
	return uc
}

// ProcessEvent starts a hotfix run for a merged pull request. Other deliveries
// are acknowledged and ignored.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Debug("Ignore unsupported event", "type", event.Type, "action", event.Action)
		return nil
	}

	pr := event.Trigger.PullRequest
	if pr == nil || !pr.Merged {
		logger.Info("Ignore pull request closed without merge", "repository", event.Repository)
		return nil
	}

	if uc.triggerLabel != "" && !pr.HasLabel(uc.triggerLabel) {
		logger.Info("Ignore pull request without trigger label",
			"number", pr.Number,
			"label", uc.triggerLabel,
		)
		return nil
	}

	trigger := event.Trigger
	deliveryID := event.ID
	uc.dispatch(ctx, func(ctx context.Context) error {
		ctx = ctxlog.With(ctx, ctxlog.From(ctx).With("delivery_id", deliveryID))
		result, err := uc.hotfix.Run(ctx, trigger)
		if err != nil {
			return err
		}
		ctxlog.From(ctx).Info("Hotfix finished",
			"run_id", result.RunID,
			"version", result.Version,
		)
		return nil
	})

	return nil
}
