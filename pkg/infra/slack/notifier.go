package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/slack-go/slack"
)

type notifier struct {
	client  *slack.Client
	channel string
}

// NewNotifier creates a ConflictNotifier posting to a Slack channel
func NewNotifier(token, channel string, opts ...slack.Option) (interfaces.ConflictNotifier, error) {
	if token == "" || channel == "" {
		return nil, goerr.New("slack token and channel are required")
	}

	return &notifier{
		client:  slack.New(token, opts...),
		channel: channel,
	}, nil
}

// NotifyConflict posts a short conflict message to the channel
func (n *notifier) NotifyConflict(ctx context.Context, event *model.TriggerEvent, release *model.ReleaseBranch, conflict *model.ConflictBranch) error {
	text := fmt.Sprintf(":warning: Cherry-pick of %s (PR #%d) onto `%s` in %s conflicted. Resolve it on `%s`.",
		event.PullRequest.MergeCommitSHA.Short(),
		event.PullRequest.Number,
		release.Name,
		event.FullName(),
		conflict.Name,
	)

	if _, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false)); err != nil {
		return goerr.Wrap(err, "failed to post slack message",
			goerr.V("channel", n.channel),
			goerr.V("repository", event.FullName()))
	}
	return nil
}
