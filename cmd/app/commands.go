package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/warden/internal/app"
	"github.com/allisson/warden/internal/config"
)

func getCommands(version string) []*cli.Command {
	var cmds []*cli.Command
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getUserCommands()...)
	cmds = append(cmds, getAuthCommands()...)
	return cmds
}

// withContainer loads the configuration from the environment and hands a fresh container to
// action. The container is shut down when action returns.
func withContainer(action func(ctx context.Context, cmd *cli.Command, container *app.Container) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		container := app.NewContainer(config.Load())
		defer func() { _ = container.Shutdown(ctx) }()
		return action(ctx, cmd, container)
	}
}

// formatFlag selects text or json output. WARDEN_OUTPUT_FORMAT sets the default for scripts.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
		Sources: cli.EnvVars("WARDEN_OUTPUT_FORMAT"),
		Validator: func(format string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown output format %q", format)
			}
			return nil
		},
	}
}
