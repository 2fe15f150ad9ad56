package interfaces

import (
	"context"

	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// GitHubClient is the subset of the hosting platform API the hotfix pipeline
// needs. Implementations classify failures into types.ErrNotFound,
// types.ErrAlreadyExists, types.ErrConflict and types.ErrNoDiff so callers can
// branch on errors.Is.
type GitHubClient interface {
	// GetLatestRelease returns the latest published release.
	GetLatestRelease(ctx context.Context, owner, repo string) (*model.Release, error)

	// GetRef resolves a short ref such as heads/main or tags/1.2.3 to the
	// commit it points at. Annotated tags are peeled.
	GetRef(ctx context.Context, owner, repo, ref string) (types.CommitSHA, error)

	// CreateRef creates a fully qualified ref such as refs/heads/release-1.2.4.
	CreateRef(ctx context.Context, owner, repo, ref string, sha types.CommitSHA) error

	// CherryPick applies commit onto the tip of branch and returns the new tip.
	CherryPick(ctx context.Context, owner, repo string, branch types.BranchName, commit types.CommitSHA) (types.CommitSHA, error)

	// CreateComment posts a comment on an issue or pull request.
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error

	// CreatePullRequest opens a pull request and returns its number.
	CreatePullRequest(ctx context.Context, owner, repo string, pr *model.DraftPullRequest) (int, error)

	// FindPullRequest returns the number of an open pull request for head and
	// base, or types.ErrNotFound.
	FindPullRequest(ctx context.Context, owner, repo string, head, base types.BranchName) (int, error)
}
