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

//go:embed templates/conflict_comment.md
var conflictCommentTemplate string

var conflictComment = template.Must(template.New("conflict_comment").Parse(conflictCommentTemplate))

type conflictCommentInput struct {
	Commit         types.CommitSHA
	ReleaseBranch  types.BranchName
	ConflictBranch types.BranchName
}

// ApplyHotfix cherry-picks the merge commit onto the release branch. A failed
// pick is not an error: the merge commit is parked on a conflict branch and the
// pull request gets a comment explaining how to finish by hand. The returned
// error is only set when that recovery itself failed.
func ApplyHotfix(ctx context.Context, client interfaces.GitHubClient, notifier interfaces.ConflictNotifier, event *model.TriggerEvent, branch *model.ReleaseBranch) (*model.CherryPickResult, error) {
	logger := ctxlog.From(ctx)
	commit := event.PullRequest.MergeCommitSHA

	tip, err := client.CherryPick(ctx, event.Owner, event.Repo, branch.Name, commit)
	if err == nil {
		logger.Info("cherry-picked merge commit", "commit", commit, "branch", branch.Name, "tip", tip)
		return &model.CherryPickResult{
			Outcome: model.CherryPickApplied,
			Commit:  tip,
		}, nil
	}

	pickErr := goerr.Wrap(errors.Join(types.ErrCherryPickConflict, err), "failed to cherry-pick merge commit",
		goerr.V("commit", commit),
		goerr.V("branch", branch.Name))
	logger.Warn("cherry-pick failed, preparing conflict branch", "error", pickErr)

	result := &model.CherryPickResult{
		Outcome: model.CherryPickConflict,
		Reason:  err.Error(),
		ConflictBranch: &model.ConflictBranch{
			Name: model.ConflictBranchName(branch.Name, event.PullRequest.Number),
			SHA:  commit,
		},
	}

	var errs []error
	if err := createConflictBranch(ctx, client, event, result.ConflictBranch); err != nil {
		errs = append(errs, err)
	}

	if err := postConflictComment(ctx, client, event, branch, result.ConflictBranch); err != nil {
		errs = append(errs, err)
	} else {
		result.CommentPosted = true
	}

	if notifier != nil {
		if err := notifier.NotifyConflict(ctx, event, branch, result.ConflictBranch); err != nil {
			logger.Warn("failed to notify conflict", "error", err)
		} else {
			result.Notified = true
		}
	}

	if len(errs) > 0 {
		return result, goerr.Wrap(errors.Join(append([]error{types.ErrConflictRecovery}, errs...)...),
			"conflict recovery incomplete",
			goerr.V("conflict_branch", result.ConflictBranch.Name))
	}
	return result, nil
}

func createConflictBranch(ctx context.Context, client interfaces.GitHubClient, event *model.TriggerEvent, conflict *model.ConflictBranch) error {
	logger := ctxlog.From(ctx)

	err := client.CreateRef(ctx, event.Owner, event.Repo, conflict.Name.FullRef(), conflict.SHA)
	switch {
	case err == nil:
		logger.Info("conflict branch created", "branch", conflict.Name, "sha", conflict.SHA)
		return nil
	case errors.Is(err, types.ErrAlreadyExists):
		// Left over from an earlier run for the same pull request.
		logger.Info("conflict branch already exists", "branch", conflict.Name)
		return nil
	default:
		return goerr.Wrap(err, "failed to create conflict branch", goerr.V("branch", conflict.Name))
	}
}

func postConflictComment(ctx context.Context, client interfaces.GitHubClient, event *model.TriggerEvent, branch *model.ReleaseBranch, conflict *model.ConflictBranch) error {
	var body bytes.Buffer
	if err := conflictComment.Execute(&body, conflictCommentInput{
		Commit:         conflict.SHA,
		ReleaseBranch:  branch.Name,
		ConflictBranch: conflict.Name,
	}); err != nil {
		return goerr.Wrap(err, "failed to render conflict comment")
	}

	if err := client.CreateComment(ctx, event.Owner, event.Repo, event.PullRequest.Number, body.String()); err != nil {
		return goerr.Wrap(err, "failed to comment on pull request", goerr.V("number", event.PullRequest.Number))
	}
	return nil
}
