package model

import "github.com/m-mizutani/hotfixer/pkg/domain/types"

// BranchState is the outcome of release branch reconciliation.
type BranchState string

const (
	BranchUnknown BranchState = "unknown"
	BranchExists  BranchState = "exists"
	BranchCreated BranchState = "created"
)

// ReleaseBranch carries hotfix commits for the next patch release.
type ReleaseBranch struct {
	Name    types.BranchName
	BaseSHA types.CommitSHA
	State   BranchState
}

// ConflictBranch points at the raw merge commit when a cherry-pick failed.
type ConflictBranch struct {
	Name types.BranchName
	SHA  types.CommitSHA
}
