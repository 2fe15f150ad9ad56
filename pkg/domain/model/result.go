package model

import "github.com/m-mizutani/hotfixer/pkg/domain/types"

// Resolution is the output of version resolution.
type Resolution struct {
	Release       *Release
	Version       types.Version
	ReleaseBranch types.BranchName
}

// CherryPickOutcome is the outcome of applying the merge commit.
type CherryPickOutcome string

const (
	CherryPickApplied  CherryPickOutcome = "applied"
	CherryPickConflict CherryPickOutcome = "conflict"
)

// CherryPickResult describes what the executor did.
type CherryPickResult struct {
	Outcome        CherryPickOutcome
	Commit         types.CommitSHA // new release branch tip when applied
	Reason         string          // why the pick failed
	ConflictBranch *ConflictBranch
	CommentPosted  bool
	Notified       bool
}

// HotfixResult summarizes one pipeline invocation.
type HotfixResult struct {
	RunID         types.RunID
	Repository    string
	PullNumber    int
	Version       types.Version
	ReleaseBranch *ReleaseBranch
	CherryPick    *CherryPickResult
	PullRequest   *DraftPullRequest
}
