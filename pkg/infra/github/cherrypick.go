package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

const tempBranchPrefix = "hotfixer/cherry-pick-"

// CherryPick applies commit onto branch using the Git Data API only.
//
// A sibling commit holding the branch tree on top of the picked commit's
// first parent is merged with the picked commit on a temporary branch. The
// tree of that merge is the cherry-picked result, which is then committed on
// top of the branch tip and fast-forwarded. The target branch is updated only
// after the merge succeeded; a conflict leaves it untouched.
func (c *client) CherryPick(ctx context.Context, owner, repo string, branch types.BranchName, commit types.CommitSHA) (types.CommitSHA, error) {
	logger := ctxlog.From(ctx)

	head, err := c.GetRef(ctx, owner, repo, branch.HeadRef())
	if err != nil {
		return "", err
	}

	headCommit, _, err := c.githubClient.Git.GetCommit(ctx, owner, repo, head.String())
	if err != nil {
		return "", wrapAPIError(err, "failed to get branch tip commit",
			goerr.V("branch", branch),
			goerr.V("sha", head))
	}

	picked, _, err := c.githubClient.Git.GetCommit(ctx, owner, repo, commit.String())
	if err != nil {
		return "", wrapAPIError(err, "failed to get commit to cherry-pick", goerr.V("sha", commit))
	}
	if len(picked.Parents) == 0 {
		return "", goerr.New("cannot cherry-pick a root commit", goerr.V("sha", commit))
	}
	// For merge commits the first parent is the mainline side.
	parent := picked.Parents[0].GetSHA()

	sibling, _, err := c.githubClient.Git.CreateCommit(ctx, owner, repo, github.Commit{
		Message: github.Ptr(fmt.Sprintf("sibling of %s", commit)),
		Tree:    &github.Tree{SHA: github.Ptr(headCommit.GetTree().GetSHA())},
		Parents: []*github.Commit{{SHA: github.Ptr(parent)}},
	}, nil)
	if err != nil {
		return "", wrapAPIError(err, "failed to create sibling commit", goerr.V("sha", commit))
	}

	temp := types.BranchName(tempBranchPrefix + uuid.NewString())
	if err := c.CreateRef(ctx, owner, repo, temp.FullRef(), types.CommitSHA(sibling.GetSHA())); err != nil {
		return "", err
	}
	defer func() {
		// The request context may already be done; cleanup must still run.
		if _, err := c.githubClient.Git.DeleteRef(context.WithoutCancel(ctx), owner, repo, temp.HeadRef()); err != nil {
			logger.Warn("Failed to delete temporary branch", "branch", temp, "error", err)
		}
	}()

	logger.Debug("Merging commit into temporary branch",
		"commit", commit,
		"temp_branch", temp,
		"sibling", sibling.GetSHA(),
	)

	merged, _, err := c.githubClient.Repositories.Merge(ctx, owner, repo, &github.RepositoryMergeRequest{
		Base:          github.Ptr(temp.String()),
		Head:          github.Ptr(commit.String()),
		CommitMessage: github.Ptr(fmt.Sprintf("merge %s into %s", commit, temp)),
	})
	if err != nil {
		return "", wrapAPIError(err, "failed to merge commit",
			goerr.V("branch", branch),
			goerr.V("sha", commit))
	}
	tree := merged.GetCommit().GetTree().GetSHA()
	if tree == "" {
		return "", goerr.New("merge produced no commit", goerr.V("sha", commit))
	}

	// Already applied by an earlier run: the pick changes nothing.
	if tree == headCommit.GetTree().GetSHA() {
		logger.Info("Commit already present on branch, skipping", "branch", branch, "commit", commit)
		return head, nil
	}

	message := fmt.Sprintf("%s\n\n(cherry picked from commit %s)", picked.GetMessage(), commit)
	result, _, err := c.githubClient.Git.CreateCommit(ctx, owner, repo, github.Commit{
		Message: github.Ptr(message),
		Author:  picked.Author,
		Tree:    &github.Tree{SHA: github.Ptr(tree)},
		Parents: []*github.Commit{{SHA: github.Ptr(head.String())}},
	}, nil)
	if err != nil {
		return "", wrapAPIError(err, "failed to create cherry-pick commit", goerr.V("sha", commit))
	}

	// Non-force update: fails if someone pushed to the branch meanwhile.
	if _, _, err := c.githubClient.Git.UpdateRef(ctx, owner, repo, branch.HeadRef(), github.UpdateRef{
		SHA:   result.GetSHA(),
		Force: github.Ptr(false),
	}); err != nil {
		return "", wrapAPIError(err, "failed to update branch",
			goerr.V("branch", branch),
			goerr.V("sha", result.GetSHA()))
	}

	return types.CommitSHA(result.GetSHA()), nil
}
