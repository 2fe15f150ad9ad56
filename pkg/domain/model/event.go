package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// TriggerEvent is the part of a webhook payload the hotfix pipeline reads.
// PullRequest is nil when the delivery carried no pull_request section.
type TriggerEvent struct {
	Owner       string
	Repo        string
	PullRequest *PullRequest
}

// PullRequest holds the merged pull request that triggered the run.
type PullRequest struct {
	Number         int
	Merged         bool
	MergeCommitSHA types.CommitSHA
	BaseBranch     types.BranchName
	Labels         []string
}

// FullName returns owner/repo.
func (x *TriggerEvent) FullName() string {
	return x.Owner + "/" + x.Repo
}

// Validate checks that the event describes a merged pull request.
func (x *TriggerEvent) Validate() error {
	if x.PullRequest == nil {
		return goerr.Wrap(types.ErrUnsupportedEvent, "no pull_request in trigger event",
			goerr.V("repository", x.FullName()))
	}
	if !x.PullRequest.Merged {
		return goerr.Wrap(types.ErrNotMerged, "pull request is not merged",
			goerr.V("repository", x.FullName()),
			goerr.V("number", x.PullRequest.Number))
	}
	if x.Owner == "" || x.Repo == "" || x.PullRequest.Number <= 0 || x.PullRequest.MergeCommitSHA == "" {
		return goerr.Wrap(types.ErrInvalidEvent, "trigger event is incomplete",
			goerr.V("owner", x.Owner),
			goerr.V("repo", x.Repo),
			goerr.V("number", x.PullRequest.Number),
			goerr.V("merge_commit_sha", x.PullRequest.MergeCommitSHA))
	}
	return nil
}

// HasLabel reports whether the pull request carries the given label.
func (x *PullRequest) HasLabel(label string) bool {
	for _, l := range x.Labels {
		if l == label {
			return true
		}
	}
	return false
}
