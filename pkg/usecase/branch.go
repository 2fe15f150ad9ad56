package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// ReconcileBranch makes sure the release branch exists. An existing branch is
// left untouched; a missing one is created from the base chosen by the policy.
func ReconcileBranch(ctx context.Context, client interfaces.GitHubClient, event *model.TriggerEvent, res *model.Resolution, policy model.Policy) (*model.ReleaseBranch, error) {
	logger := ctxlog.From(ctx)
	branch := &model.ReleaseBranch{
		Name:  res.ReleaseBranch,
		State: model.BranchUnknown,
	}

	tip, err := client.GetRef(ctx, event.Owner, event.Repo, branch.Name.HeadRef())
	if err == nil {
		branch.BaseSHA = tip
		branch.State = model.BranchExists
		logger.Debug("release branch exists", "branch", branch.Name, "sha", tip)
		return branch, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, goerr.Wrap(errors.Join(types.ErrBranchCheck, err), "failed to look up release branch",
			goerr.V("branch", branch.Name))
	}

	base, err := resolveBase(ctx, client, event, res.Release, policy)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrBranchCheck, err), "failed to resolve release branch base",
			goerr.V("branch", branch.Name),
			goerr.V("base_ref", policy.BaseRef))
	}

	if err := client.CreateRef(ctx, event.Owner, event.Repo, branch.Name.FullRef(), base); err != nil {
		if errors.Is(err, types.ErrAlreadyExists) {
			// Another run created it between the lookup and now.
			tip, err := client.GetRef(ctx, event.Owner, event.Repo, branch.Name.HeadRef())
			if err != nil {
				return nil, goerr.Wrap(errors.Join(types.ErrBranchCheck, err), "failed to read concurrently created release branch",
					goerr.V("branch", branch.Name))
			}
			branch.BaseSHA = tip
			branch.State = model.BranchExists
			logger.Info("release branch was created concurrently", "branch", branch.Name, "sha", tip)
			return branch, nil
		}
		return nil, goerr.Wrap(errors.Join(types.ErrBranchCheck, err), "failed to create release branch",
			goerr.V("branch", branch.Name),
			goerr.V("base", base))
	}

	branch.BaseSHA = base
	branch.State = model.BranchCreated
	logger.Info("release branch created", "branch", branch.Name, "base", base)
	return branch, nil
}

func resolveBase(ctx context.Context, client interfaces.GitHubClient, event *model.TriggerEvent, release *model.Release, policy model.Policy) (types.CommitSHA, error) {
	switch policy.BaseRef {
	case model.BaseRefTargetCommitish:
		if release.TargetCommitish == "" {
			return "", goerr.New("release has no target_commitish", goerr.V("tag", release.TagName))
		}
		if sha := types.CommitSHA(release.TargetCommitish); sha.IsFull() {
			return sha, nil
		}
		return client.GetRef(ctx, event.Owner, event.Repo, types.BranchName(release.TargetCommitish).HeadRef())

	default:
		return client.GetRef(ctx, event.Owner, event.Repo, "tags/"+release.TagName)
	}
}
