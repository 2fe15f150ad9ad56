package github

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/domain/types"
	"golang.org/x/oauth2"
)

// maxTagDepth bounds how many annotated tag objects GetRef follows.
const maxTagDepth = 8

type client struct {
	githubClient *github.Client
}

// config holds options shared by the client constructors
type config struct {
	baseURL string
}

// Option configures a GitHub client
type Option func(*config)

// WithBaseURL points the client at a GitHub Enterprise Server API endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// New wraps an existing go-github client.
func New(githubClient *github.Client) interfaces.GitHubClient {
	return &client{githubClient: githubClient}
}

// NewAppClient creates a new GitHub client with App installation authentication
func NewAppClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	cfg := applyOptions(opts)

	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID))
	}
	if cfg.baseURL != "" {
		itr.BaseURL = strings.TrimRight(cfg.baseURL, "/")
	}

	return newClient(&http.Client{Transport: itr}, cfg)
}

// NewTokenClient creates a new GitHub client authenticated by a personal or
// workflow token
func NewTokenClient(ctx context.Context, token string, opts ...Option) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is empty")
	}
	cfg := applyOptions(opts)

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return newClient(oauth2.NewClient(ctx, ts), cfg)
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newClient(httpClient *http.Client, cfg *config) (interfaces.GitHubClient, error) {
	githubClient := github.NewClient(httpClient)
	if cfg.baseURL != "" {
		var err error
		githubClient, err = githubClient.WithEnterpriseURLs(cfg.baseURL, cfg.baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub base URL", goerr.V("base_url", cfg.baseURL))
		}
	}
	return &client{githubClient: githubClient}, nil
}

// GetLatestRelease returns the latest published release
func (c *client) GetLatestRelease(ctx context.Context, owner, repo string) (*model.Release, error) {
	release, _, err := c.githubClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, wrapAPIError(err, "failed to get latest release",
			goerr.V("owner", owner),
			goerr.V("repo", repo))
	}

	return &model.Release{
		TagName:         release.GetTagName(),
		TargetCommitish: release.GetTargetCommitish(),
	}, nil
}

// GetRef resolves a ref to a commit SHA, following annotated tags
func (c *client) GetRef(ctx context.Context, owner, repo, ref string) (types.CommitSHA, error) {
	reference, _, err := c.githubClient.Git.GetRef(ctx, owner, repo, ref)
	if err != nil {
		return "", wrapAPIError(err, "failed to get ref",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref))
	}

	obj := reference.GetObject()
	for depth := 0; obj.GetType() == "tag"; depth++ {
		if depth >= maxTagDepth {
			return "", goerr.New("annotated tag chain too deep", goerr.V("ref", ref))
		}

		ctxlog.From(ctx).Debug("Peeling annotated tag", "ref", ref, "sha", obj.GetSHA())
		tag, _, err := c.githubClient.Git.GetTag(ctx, owner, repo, obj.GetSHA())
		if err != nil {
			return "", wrapAPIError(err, "failed to get annotated tag",
				goerr.V("ref", ref),
				goerr.V("sha", obj.GetSHA()))
		}
		obj = tag.GetObject()
	}

	if obj.GetSHA() == "" {
		return "", goerr.New("ref has no object", goerr.V("ref", ref))
	}
	return types.CommitSHA(obj.GetSHA()), nil
}

// CreateRef creates a new fully qualified ref
func (c *client) CreateRef(ctx context.Context, owner, repo, ref string, sha types.CommitSHA) error {
	_, _, err := c.githubClient.Git.CreateRef(ctx, owner, repo, github.CreateRef{
		Ref: ref,
		SHA: sha.String(),
	})
	if err != nil {
		return wrapAPIError(err, "failed to create ref",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref),
			goerr.V("sha", sha))
	}
	return nil
}

// CreateComment creates a comment on a pull request or issue
func (c *client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.githubClient.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return wrapAPIError(err, "failed to create comment",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number))
	}
	return nil
}

// CreatePullRequest opens a pull request
func (c *client) CreatePullRequest(ctx context.Context, owner, repo string, pr *model.DraftPullRequest) (int, error) {
	newPR := &github.NewPullRequest{
		Title: github.Ptr(pr.Title),
		Head:  github.Ptr(pr.Head.String()),
		Base:  github.Ptr(pr.Base.String()),
		Draft: github.Ptr(pr.Draft),
	}
	if pr.Body != "" {
		newPR.Body = github.Ptr(pr.Body)
	}

	created, _, err := c.githubClient.PullRequests.Create(ctx, owner, repo, newPR)
	if err != nil {
		return 0, wrapAPIError(err, "failed to create pull request",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("head", pr.Head),
			goerr.V("base", pr.Base))
	}
	return created.GetNumber(), nil
}

// FindPullRequest looks up an open pull request by head and base branch
func (c *client) FindPullRequest(ctx context.Context, owner, repo string, head, base types.BranchName) (int, error) {
	prs, _, err := c.githubClient.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State: "open",
		Head:  owner + ":" + head.String(),
		Base:  base.String(),
	})
	if err != nil {
		return 0, wrapAPIError(err, "failed to list pull requests",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("head", head))
	}
	if len(prs) == 0 {
		return 0, goerr.Wrap(types.ErrNotFound, "no open pull request",
			goerr.V("head", head),
			goerr.V("base", base))
	}
	return prs[0].GetNumber(), nil
}

// wrapAPIError wraps err and, when the response can be classified, joins the
// matching sentinel so callers can use errors.Is.
func wrapAPIError(err error, msg string, opts ...goerr.Option) error {
	if kind := classify(err); kind != nil {
		err = errors.Join(kind, err)
	}
	return goerr.Wrap(err, msg, opts...)
}

func classify(err error) error {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Response == nil {
		return nil
	}

	switch errResp.Response.StatusCode {
	case http.StatusNotFound:
		return types.ErrNotFound
	case http.StatusConflict:
		return types.ErrConflict
	case http.StatusUnprocessableEntity:
		texts := []string{errResp.Message}
		for _, e := range errResp.Errors {
			texts = append(texts, e.Message)
		}
		msg := strings.ToLower(strings.Join(texts, " "))

		switch {
		case strings.Contains(msg, "already exists"):
			return types.ErrAlreadyExists
		case strings.Contains(msg, "no commits between"):
			return types.ErrNoDiff
		}
	}
	return nil
}
