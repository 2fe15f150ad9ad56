package model

import (
	"math"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
)

// Release is the latest published release of a repository.
type Release struct {
	TagName         string
	TargetCommitish string
}

// NextPatch computes the next patch version for a release tag. The tag prefix
// is removed when present, pre-release and build metadata are dropped and
// only the patch number is incremented, so 1.2.3-rc.1 yields 1.2.4.
func NextPatch(tagName, tagPrefix string) (types.Version, error) {
	raw := tagName
	if tagPrefix != "" {
		raw = strings.TrimPrefix(raw, tagPrefix)
	}

	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return "", goerr.Wrap(types.ErrVersionResolution, "release tag is not a semantic version",
			goerr.V("tag", tagName),
			goerr.V("tag_prefix", tagPrefix),
			goerr.V("cause", err.Error()))
	}

	if v.Patch() == math.MaxUint64 {
		return "", goerr.Wrap(types.ErrVersionResolution, "patch number overflows",
			goerr.V("tag", tagName))
	}

	next := semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	return types.Version(next.String()), nil
}
