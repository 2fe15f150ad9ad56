package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hotfixer/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/hotfixer/pkg/controller/github"
	"github.com/m-mizutani/hotfixer/pkg/domain/model"
	"github.com/m-mizutani/hotfixer/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		eventPath  string
		eventName  string
		repository string
		githubCfg  config.GitHub
		policyCfg  config.Policy
		slackCfg   config.Slack
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "event-path",
			Usage:       "Path to the pull_request event payload",
			Required:    true,
			Destination: &eventPath,
			Sources:     cli.EnvVars("GITHUB_EVENT_PATH"),
		},
		&cli.StringFlag{
			Name:        "event-name",
			Usage:       "Name of the event in the payload",
			Value:       "pull_request",
			Destination: &eventName,
			Sources:     cli.EnvVars("GITHUB_EVENT_NAME"),
		},
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "owner/repo used when the payload has no repository",
			Destination: &repository,
			Sources:     cli.EnvVars("GITHUB_REPOSITORY"),
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the hotfix pipeline once for an event file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			payload, err := os.ReadFile(eventPath)
			if err != nil {
				return goerr.Wrap(err, "failed to read event file", goerr.V("path", eventPath))
			}

			policy, err := policyCfg.Build(c)
			if err != nil {
				return err
			}

			client, err := githubCfg.NewClient(ctx)
			if err != nil {
				return err
			}

			opts := []usecase.HotfixOption{usecase.WithPolicy(policy)}
			notifier, err := slackCfg.NewNotifier()
			if err != nil {
				return err
			}
			if notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			logger.Debug("Starting hotfix run",
				"event_path", eventPath,
				"event_name", eventName,
				"policy", policy,
				"github", githubCfg,
			)

			processor := githubcontroller.NewEventProcessor(
				usecase.NewHotfix(client, opts...),
				githubcontroller.WithRepository(repository),
			)
			result, err := processor.ProcessEvent(ctx, eventName, payload)
			printSummary(c.Root().Writer, result)
			return err
		},
	}
}

func printSummary(w io.Writer, result *model.HotfixResult) {
	if result == nil {
		return
	}
	if w == nil {
		w = os.Stdout
	}

	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s #%d\n", bold("hotfix"), result.Repository, result.PullNumber)
	if result.Version != "" {
		fmt.Fprintf(w, "  version:      %s\n", result.Version)
	}
	if b := result.ReleaseBranch; b != nil {
		fmt.Fprintf(w, "  branch:       %s (%s)\n", b.Name, b.State)
	}
	if p := result.CherryPick; p != nil {
		switch p.Outcome {
		case model.CherryPickApplied:
			fmt.Fprintf(w, "  cherry-pick:  %s %s\n", ok(p.Outcome), p.Commit.Short())
		default:
			name := ""
			if p.ConflictBranch != nil {
				name = p.ConflictBranch.Name.String()
			}
			fmt.Fprintf(w, "  cherry-pick:  %s, resolve on %s\n", warn(p.Outcome), name)
		}
	}
	if pr := result.PullRequest; pr != nil {
		state := ok(pr.State)
		if pr.State == model.PullRequestSkipped {
			state = warn(pr.State)
		}
		if pr.Number > 0 {
			fmt.Fprintf(w, "  pull request: %s #%d\n", state, pr.Number)
		} else {
			fmt.Fprintf(w, "  pull request: %s\n", state)
		}
	}
}
