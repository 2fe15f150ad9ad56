package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/hotfixer/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	PrivateKeyFile string
	WebhookSecret  string `masq:"secret"`
	BaseURL        string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token, used when no GitHub App is configured",
			Destination: &c.Token,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-private-key-file",
			Usage:       "Path to GitHub App private key (PEM)",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_PRIVATE_KEY_FILE"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret (serve only)",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub Enterprise Server API URL, e.g. https://ghe.example.com/api/v3/",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("HOTFIXER_GITHUB_BASE_URL"),
		},
	}
}

// NewClient creates a GitHub client. GitHub App credentials take precedence
// over a token.
func (c *GitHub) NewClient(ctx context.Context) (interfaces.GitHubClient, error) {
	var opts []githubinfra.Option
	if c.BaseURL != "" {
		opts = append(opts, githubinfra.WithBaseURL(c.BaseURL))
	}

	if c.AppID != 0 {
		if c.InstallationID == 0 {
			return nil, goerr.New("github-installation-id is required with github-app-id")
		}
		key, err := c.privateKey()
		if err != nil {
			return nil, err
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, key, opts...)
	}

	if c.Token != "" {
		return githubinfra.NewTokenClient(ctx, c.Token, opts...)
	}

	return nil, goerr.New("either github-app-id or github-token is required")
}

func (c *GitHub) privateKey() ([]byte, error) {
	switch {
	case c.PrivateKey != "":
		return []byte(c.PrivateKey), nil
	case c.PrivateKeyFile != "":
		key, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", c.PrivateKeyFile))
		}
		return key, nil
	default:
		return nil, goerr.New("github-private-key or github-private-key-file is required with github-app-id")
	}
}
