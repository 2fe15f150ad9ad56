package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// BaseRefStrategy selects where a new release branch starts.
type BaseRefStrategy string

const (
	// BaseRefTag starts the branch at the commit the release tag points to.
	BaseRefTag BaseRefStrategy = "tag"
	// BaseRefTargetCommitish starts the branch at the release's target_commitish.
	BaseRefTargetCommitish BaseRefStrategy = "target_commitish"
)

const conflictSuffix = "conflict"

// Policy collects the knobs that differ between repositories using the
// hotfix workflow.
type Policy struct {
	Mainline          types.BranchName `toml:"mainline"`
	BranchPrefix      string           `toml:"branch_prefix"`
	Separator         string           `toml:"separator"`
	TagPrefix         string           `toml:"tag_prefix"`
	BaseRef           BaseRefStrategy  `toml:"base_ref"`
	PublishOnConflict bool             `toml:"publish_on_conflict"`
	AllowExistingPR   bool             `toml:"allow_existing_pr"`
	FailOnConflict    bool             `toml:"fail_on_conflict"`
}

// DefaultPolicy returns the canonical policy: main, release-<version>, branch
// based on the release tag commit.
func DefaultPolicy() Policy {
	return Policy{
		Mainline:          "main",
		BranchPrefix:      "release",
		Separator:         "-",
		TagPrefix:         "v",
		BaseRef:           BaseRefTag,
		PublishOnConflict: true,
		AllowExistingPR:   true,
		FailOnConflict:    false,
	}
}

// Validate checks the policy for values the pipeline cannot work with.
func (x Policy) Validate() error {
	if x.Mainline == "" {
		return goerr.New("mainline branch must not be empty")
	}
	if x.BranchPrefix == "" {
		return goerr.New("branch prefix must not be empty")
	}
	if x.Separator != "-" && x.Separator != "/" {
		return goerr.New("separator must be '-' or '/'", goerr.V("separator", x.Separator))
	}
	switch x.BaseRef {
	case BaseRefTag, BaseRefTargetCommitish:
	default:
		return goerr.New("unknown base ref strategy", goerr.V("base_ref", x.BaseRef))
	}
	return nil
}

// ReleaseBranchName derives the release branch for a version.
func (x Policy) ReleaseBranchName(version types.Version) types.BranchName {
	return types.BranchName(x.BranchPrefix + x.Separator + version.String())
}

// ConflictBranchName derives the recovery branch for a pull request whose
// merge commit could not be cherry-picked onto release.
func ConflictBranchName(release types.BranchName, number int) types.BranchName {
	return types.BranchName(fmt.Sprintf("%s-%d-%s", release, number, conflictSuffix))
}
