package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr         string
	TriggerLabel string
	Timeout      time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("HOTFIXER_ADDR"),
		},
		&cli.StringFlag{
			Name:        "trigger-label",
			Usage:       "Only run for merged pull requests with this label",
			Destination: &c.TriggerLabel,
			Sources:     cli.EnvVars("HOTFIXER_TRIGGER_LABEL"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Deadline of a single hotfix run",
			Value:       5 * time.Minute,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("HOTFIXER_TIMEOUT"),
		},
	}
}
