package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/hotfixer/pkg/controller/github"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// MockHotfixUseCase is a mock implementation of HotfixUseCase
type MockHotfixUseCase struct {
	runFunc func(ctx context.Context, event *model.TriggerEvent) (*model.HotfixResult, error)
	events  []*model.TriggerEvent
}

func (m *MockHotfixUseCase) Run(ctx context.Context, event *model.TriggerEvent) (*model.HotfixResult, error) {
	m.events = append(m.events, event)
	if m.runFunc != nil {
		return m.runFunc(ctx, event)
	}
	return &model.HotfixResult{}, nil
}

const mergedPayload = `{
  "action": "closed",
  "number": 42,
  "pull_request": {
    "number": 42,
    "merged": true,
    "merge_commit_sha": "abc123",
    "base": {"ref": "main"},
    "labels": [{"name": "bug"}, {"name": "hotfix"}]
  },
  "repository": {
    "name": "widget",
    "full_name": "acme/widget",
    "owner": {"login": "acme"}
  }
}`

func TestEventProcessor_ProcessEvent(t *testing.T) {
	mockUC := &MockHotfixUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	_, err := processor.ProcessEvent(context.Background(), "pull_request", []byte(mergedPayload))
	gt.NoError(t, err)

	gt.A(t, mockUC.events).Length(1)
	trigger := mockUC.events[0]
	gt.V(t, trigger.Owner).Equal("acme")
	gt.V(t, trigger.Repo).Equal("widget")
	gt.V(t, trigger.PullRequest.Number).Equal(42)
	gt.True(t, trigger.PullRequest.Merged)
	gt.V(t, trigger.PullRequest.MergeCommitSHA).Equal(types.CommitSHA("abc123"))
	gt.V(t, trigger.PullRequest.BaseBranch).Equal(types.BranchName("main"))
	gt.True(t, trigger.PullRequest.HasLabel("hotfix"))
}

func TestEventProcessor_UnsupportedEventType(t *testing.T) {
	mockUC := &MockHotfixUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	_, err := processor.ProcessEvent(context.Background(), "push", []byte(`{}`))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrUnsupportedEvent))
	gt.A(t, mockUC.events).Length(0)
}

func TestEventProcessor_InvalidPayload(t *testing.T) {
	mockUC := &MockHotfixUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC)

	_, err := processor.ProcessEvent(context.Background(), "pull_request", []byte(`{not json`))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrInvalidEvent))
	gt.A(t, mockUC.events).Length(0)
}

func TestEventProcessor_RepositoryFallback(t *testing.T) {
	mockUC := &MockHotfixUseCase{}
	processor := githubcontroller.NewEventProcessor(mockUC, githubcontroller.WithRepository("acme/widget"))

	payload := `{"action":"closed","pull_request":{"number":7,"merged":true,"merge_commit_sha":"def456"}}`
	_, err := processor.ProcessEvent(context.Background(), "", []byte(payload))
	gt.NoError(t, err)

	gt.A(t, mockUC.events).Length(1)
	gt.V(t, mockUC.events[0].FullName()).Equal("acme/widget")
	gt.V(t, mockUC.events[0].PullRequest.Number).Equal(7)
}

func TestTriggerFromPullRequest_NoPullRequest(t *testing.T) {
	event := &github.PullRequestEvent{
		Repo: &github.Repository{
			Name:  github.Ptr("widget"),
			Owner: &github.User{Login: github.Ptr("acme")},
		},
	}

	trigger := githubcontroller.TriggerFromPullRequest(event)
	gt.V(t, trigger.FullName()).Equal("acme/widget")
	gt.V(t, trigger.PullRequest).Nil()
	gt.True(t, errors.Is(trigger.Validate(), types.ErrUnsupportedEvent))
}
