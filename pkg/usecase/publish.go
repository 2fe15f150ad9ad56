package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

//go:embed templates/release_body.md
var releaseBodyTemplate string

var releaseBody = template.Must(template.New("release_body").Parse(releaseBodyTemplate))

type releaseBodyInput struct {
	Version        types.Version
	TagName        string
	Number         int
	Commit         types.CommitSHA
	Conflict       bool
	ConflictBranch types.BranchName
}

// PublishDraft opens the draft pull request merging the release branch back to
// mainline. An already open pull request for the same head and base counts as
// published when the policy allows it.
func PublishDraft(ctx context.Context, client interfaces.GitHubClient, event *model.TriggerEvent, res *model.Resolution, branch *model.ReleaseBranch, pick *model.CherryPickResult, policy model.Policy) (*model.DraftPullRequest, error) {
	logger := ctxlog.From(ctx)

	input := releaseBodyInput{
		Version: res.Version,
		TagName: res.Release.TagName,
		Number:  event.PullRequest.Number,
		Commit:  event.PullRequest.MergeCommitSHA,
	}
	conflicted := pick != nil && pick.Outcome == model.CherryPickConflict
	if conflicted && pick.ConflictBranch != nil {
		input.Conflict = true
		input.ConflictBranch = pick.ConflictBranch.Name
	}

	var body bytes.Buffer
	if err := releaseBody.Execute(&body, input); err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrPublish, err), "failed to render pull request body")
	}

	pr := &model.DraftPullRequest{
		Title: model.ReleaseTitle(res.Version),
		Body:  body.String(),
		Head:  branch.Name,
		Base:  policy.Mainline,
		Draft: true,
	}

	if conflicted && !policy.PublishOnConflict {
		pr.State = model.PullRequestSkipped
		logger.Info("skip publishing release pull request after conflict", "head", pr.Head)
		return pr, nil
	}

	number, err := client.CreatePullRequest(ctx, event.Owner, event.Repo, pr)
	if err == nil {
		pr.Number = number
		pr.State = model.PullRequestCreated
		logger.Info("release pull request created", "number", number, "head", pr.Head, "base", pr.Base)
		return pr, nil
	}

	if errors.Is(err, types.ErrAlreadyExists) && policy.AllowExistingPR {
		pr.State = model.PullRequestExists
		if existing, findErr := client.FindPullRequest(ctx, event.Owner, event.Repo, pr.Head, pr.Base); findErr != nil {
			logger.Warn("failed to look up existing pull request", "error", findErr, "head", pr.Head)
		} else {
			pr.Number = existing
		}
		logger.Info("release pull request already exists", "number", pr.Number, "head", pr.Head)
		return pr, nil
	}

	return pr, goerr.Wrap(errors.Join(types.ErrPublish, err), "failed to create release pull request",
		goerr.V("head", pr.Head),
		goerr.V("base", pr.Base))
}
