package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Flag names of the policy options. Used to tell explicitly set flags apart
// from defaults when merging with a policy file.
const (
	flagPolicyFile        = "policy-file"
	flagMainline          = "mainline"
	flagBranchPrefix      = "branch-prefix"
	flagSeparator         = "branch-separator"
	flagTagPrefix         = "tag-prefix"
	flagBaseRef           = "base-ref"
	flagPublishOnConflict = "publish-on-conflict"
	flagAllowExistingPR   = "allow-existing-pr"
	flagFailOnConflict    = "fail-on-conflict"
)

// Policy holds the release policy options
type Policy struct {
	File              string
	Mainline          string
	BranchPrefix      string
	Separator         string
	TagPrefix         string
	BaseRef           string
	PublishOnConflict bool
	AllowExistingPR   bool
	FailOnConflict    bool
}

// Flags returns CLI flags for the release policy
func (c *Policy) Flags() []cli.Flag {
	def := model.DefaultPolicy()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        flagPolicyFile,
			Usage:       "TOML file with release policy; explicit flags override it",
			Destination: &c.File,
			Sources:     cli.EnvVars("HOTFIXER_POLICY_FILE"),
		},
		&cli.StringFlag{
			Name:        flagMainline,
			Usage:       "Mainline branch the release pull request targets",
			Value:       def.Mainline.String(),
			Destination: &c.Mainline,
			Sources:     cli.EnvVars("HOTFIXER_MAINLINE"),
		},
		&cli.StringFlag{
			Name:        flagBranchPrefix,
			Usage:       "Release branch prefix",
			Value:       def.BranchPrefix,
			Destination: &c.BranchPrefix,
			Sources:     cli.EnvVars("HOTFIXER_BRANCH_PREFIX"),
		},
		&cli.StringFlag{
			Name:        flagSeparator,
			Usage:       "Separator between prefix and version ('-' or '/')",
			Value:       def.Separator,
			Destination: &c.Separator,
			Sources:     cli.EnvVars("HOTFIXER_BRANCH_SEPARATOR"),
		},
		&cli.StringFlag{
			Name:        flagTagPrefix,
			Usage:       "Prefix stripped from release tags before parsing, e.g. v",
			Value:       def.TagPrefix,
			Destination: &c.TagPrefix,
			Sources:     cli.EnvVars("HOTFIXER_TAG_PREFIX"),
		},
		&cli.StringFlag{
			Name:        flagBaseRef,
			Usage:       "Base of a new release branch (tag, target_commitish)",
			Value:       string(def.BaseRef),
			Destination: &c.BaseRef,
			Sources:     cli.EnvVars("HOTFIXER_BASE_REF"),
		},
		&cli.BoolFlag{
			Name:        flagPublishOnConflict,
			Usage:       "Open the release pull request even if the cherry-pick conflicted",
			Value:       def.PublishOnConflict,
			Destination: &c.PublishOnConflict,
			Sources:     cli.EnvVars("HOTFIXER_PUBLISH_ON_CONFLICT"),
		},
		&cli.BoolFlag{
			Name:        flagAllowExistingPR,
			Usage:       "Treat an already open release pull request as success",
			Value:       def.AllowExistingPR,
			Destination: &c.AllowExistingPR,
			Sources:     cli.EnvVars("HOTFIXER_ALLOW_EXISTING_PR"),
		},
		&cli.BoolFlag{
			Name:        flagFailOnConflict,
			Usage:       "Fail the run when the cherry-pick conflicted",
			Value:       def.FailOnConflict,
			Destination: &c.FailOnConflict,
			Sources:     cli.EnvVars("HOTFIXER_FAIL_ON_CONFLICT"),
		},
	}
}

// isSetter reports whether a flag was given explicitly. *cli.Command satisfies it.
type isSetter interface {
	IsSet(name string) bool
}

// Build returns the effective policy: defaults, then the policy file, then
// explicitly set flags.
func (c *Policy) Build(cmd isSetter) (model.Policy, error) {
	policy := model.DefaultPolicy()

	if c.File != "" {
		loaded, err := LoadPolicyFile(c.File)
		if err != nil {
			return model.Policy{}, err
		}
		policy = loaded
	}

	set := func(name string) bool {
		// Without a file, flag values (defaults included) are authoritative.
		return c.File == "" || cmd.IsSet(name)
	}

	if set(flagMainline) {
		policy.Mainline = types.BranchName(c.Mainline)
	}
	if set(flagBranchPrefix) {
		policy.BranchPrefix = c.BranchPrefix
	}
	if set(flagSeparator) {
		policy.Separator = c.Separator
	}
	if set(flagTagPrefix) {
		policy.TagPrefix = c.TagPrefix
	}
	if set(flagBaseRef) {
		policy.BaseRef = model.BaseRefStrategy(c.BaseRef)
	}
	if set(flagPublishOnConflict) {
		policy.PublishOnConflict = c.PublishOnConflict
	}
	if set(flagAllowExistingPR) {
		policy.AllowExistingPR = c.AllowExistingPR
	}
	if set(flagFailOnConflict) {
		policy.FailOnConflict = c.FailOnConflict
	}

	if err := policy.Validate(); err != nil {
		return model.Policy{}, goerr.Wrap(err, "invalid release policy")
	}
	return policy, nil
}

// LoadPolicyFile reads a TOML policy. Keys missing from the file keep their
// default values; unknown keys are rejected.
func LoadPolicyFile(path string) (model.Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Policy{}, goerr.Wrap(err, "failed to open policy file", goerr.V("path", path))
	}
	defer f.Close()

	policy := model.DefaultPolicy()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&policy); err != nil {
		return model.Policy{}, goerr.Wrap(err, "failed to decode policy file", goerr.V("path", path))
	}
	return policy, nil
}
