package model

import "github.com/m-mizutani/hotfixer/pkg/domain/types"

// PullRequestState is the outcome of the publish stage.
type PullRequestState string

const (
	PullRequestCreated PullRequestState = "created"
	PullRequestExists  PullRequestState = "exists"
	PullRequestSkipped PullRequestState = "skipped"
)

// DraftPullRequest proposes merging the release branch back to mainline.
type DraftPullRequest struct {
	Title  string
	Body   string
	Head   types.BranchName
	Base   types.BranchName
	Draft  bool
	Number int
	State  PullRequestState
}

// ReleaseTitle returns the pull request title for a version.
func ReleaseTitle(version types.Version) string {
	return "Release " + version.String()
}
