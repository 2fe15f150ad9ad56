package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

type hotfixUseCase struct {
	client   interfaces.GitHubClient
	notifier interfaces.ConflictNotifier
	policy   model.Policy
}

// HotfixOption configures the hotfix pipeline.
type HotfixOption func(*hotfixUseCase)

// WithPolicy replaces the default release policy.
func WithPolicy(policy model.Policy) HotfixOption {
	return func(uc *hotfixUseCase) {
		uc.policy = policy
	}
}

// WithNotifier sends an additional notification when a cherry-pick conflicts.
func WithNotifier(notifier interfaces.ConflictNotifier) HotfixOption {
	return func(uc *hotfixUseCase) {
		uc.notifier = notifier
	}
}

// NewHotfix creates the pipeline that turns a merged pull request into a patch
// release branch and a draft pull request.
func NewHotfix(client interfaces.GitHubClient, opts ...HotfixOption) interfaces.HotfixUseCase {
	uc := &hotfixUseCase{
		client: client,
		policy: model.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run executes the stages in order. Precondition and resolution failures stop
// the run early; a conflicted cherry-pick still reaches the publisher and
// every recorded failure is returned together once it has finished.
func (uc *hotfixUseCase) Run(ctx context.Context, event *model.TriggerEvent) (*model.HotfixResult, error) {
	if err := ExtractContext(event); err != nil {
		return nil, err
	}
	if err := uc.policy.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid release policy")
	}

	runID := types.RunID(uuid.NewString())
	logger := ctxlog.From(ctx).With(
		"run_id", runID,
		"repository", event.FullName(),
		"pull_request", event.PullRequest.Number,
	)
	ctx = ctxlog.With(ctx, logger)
	logger.Info("start hotfix", "merge_commit_sha", event.PullRequest.MergeCommitSHA)

	result := &model.HotfixResult{
		RunID:      runID,
		Repository: event.FullName(),
		PullNumber: event.PullRequest.Number,
	}

	res, err := ResolveVersion(ctx, uc.client, event, uc.policy)
	if err != nil {
		return result, failed(err)
	}
	result.Version = res.Version

	branch, err := ReconcileBranch(ctx, uc.client, event, res, uc.policy)
	if err != nil {
		return result, failed(err)
	}
	result.ReleaseBranch = branch

	var errs []error
	pick, err := ApplyHotfix(ctx, uc.client, uc.notifier, event, branch)
	if err != nil {
		errs = append(errs, err)
	}
	result.CherryPick = pick
	if pick.Outcome == model.CherryPickConflict && uc.policy.FailOnConflict {
		errs = append(errs, goerr.Wrap(types.ErrCherryPickConflict, "cherry-pick conflicted",
			goerr.V("conflict_branch", pick.ConflictBranch.Name)))
	}

	pr, err := PublishDraft(ctx, uc.client, event, res, branch, pick, uc.policy)
	if err != nil {
		errs = append(errs, err)
	}
	result.PullRequest = pr

	if len(errs) > 0 {
		return result, failed(errs...)
	}

	logger.Info("hotfix completed",
		"version", result.Version,
		"branch", branch.Name,
		"cherry_pick", pick.Outcome,
		"pull_request_state", pr.State,
		"pull_request_number", pr.Number,
	)
	return result, nil
}

func failed(errs ...error) error {
	return goerr.Wrap(errors.Join(append([]error{types.ErrHotfixFailed}, errs...)...), "hotfix did not complete")
}
