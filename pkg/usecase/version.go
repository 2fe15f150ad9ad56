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

// ResolveVersion looks up the latest published release and derives the next
// patch version and its release branch name.
func ResolveVersion(ctx context.Context, client interfaces.GitHubClient, event *model.TriggerEvent, policy model.Policy) (*model.Resolution, error) {
	logger := ctxlog.From(ctx)

	release, err := client.GetLatestRelease(ctx, event.Owner, event.Repo)
	if err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrVersionResolution, err), "failed to get latest release",
			goerr.V("repository", event.FullName()))
	}
	logger.Debug("latest release", "tag", release.TagName, "target_commitish", release.TargetCommitish)

	version, err := model.NextPatch(release.TagName, policy.TagPrefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to derive next version", goerr.V("repository", event.FullName()))
	}

	branch := policy.ReleaseBranchName(version)
	logger.Debug("next release", "version", version, "branch", branch)

	return &model.Resolution{
		Release:       release,
		Version:       version,
		ReleaseBranch: branch,
	}, nil
}
