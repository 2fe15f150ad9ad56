package github

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// EventProcessor runs the hotfix pipeline for a GitHub event payload, such as
// the file GitHub Actions exposes as GITHUB_EVENT_PATH.
type EventProcessor struct {
	hotfixUC   interfaces.HotfixUseCase
	repository string
}

// ProcessorOption configures EventProcessor.
type ProcessorOption func(*EventProcessor)

// WithRepository sets owner/repo used when the payload has no repository.
func WithRepository(fullName string) ProcessorOption {
	return func(p *EventProcessor) {
		p.repository = fullName
	}
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(hotfixUC interfaces.HotfixUseCase, opts ...ProcessorOption) *EventProcessor {
	p := &EventProcessor{
		hotfixUC: hotfixUC,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessEvent decodes payload and runs the hotfix for it. An empty eventType
// is treated as pull_request.
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload []byte) (*model.HotfixResult, error) {
	logger := ctxlog.From(ctx)

	switch eventType {
	case "", "pull_request", "pull_request_target":
	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return nil, goerr.Wrap(types.ErrUnsupportedEvent, "event type is not supported",
			goerr.V("event_type", eventType))
	}

	var event github.PullRequestEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrInvalidEvent, err), "failed to decode event payload")
	}

	trigger := TriggerFromPullRequest(&event)
	if (trigger.Owner == "" || trigger.Repo == "") && p.repository != "" {
		if owner, repo, ok := strings.Cut(p.repository, "/"); ok {
			trigger.Owner, trigger.Repo = owner, repo
		}
	}

	logger.Info("Processing pull request event",
		"action", event.GetAction(),
		"repository", trigger.FullName(),
	)

	return p.hotfixUC.Run(ctx, trigger)
}

// TriggerFromPullRequest extracts the fields the pipeline reads from a
// pull_request payload. PullRequest stays nil when the payload has none.
func TriggerFromPullRequest(event *github.PullRequestEvent) *model.TriggerEvent {
	trigger := &model.TriggerEvent{
		Owner: event.GetRepo().GetOwner().GetLogin(),
		Repo:  event.GetRepo().GetName(),
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return trigger
	}

	number := pr.GetNumber()
	if number == 0 {
		number = event.GetNumber()
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.GetName())
	}

	trigger.PullRequest = &model.PullRequest{
		Number:         number,
		Merged:         pr.GetMerged(),
		MergeCommitSHA: types.CommitSHA(pr.GetMergeCommitSHA()),
		BaseBranch:     types.BranchName(pr.GetBase().GetRef()),
		Labels:         labels,
	}
	return trigger
}
