package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/warden/cmd/app/commands"
	"github.com/allisson/warden/internal/app"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete refresh tokens that expired more than the given days ago",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "days",
					Aliases: []string{"d"},
					Usage:   "Grace period in days after expiry (0 deletes everything already expired)",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				tokens, err := c.TokenUseCase()
				if err != nil {
					return err
				}
				return commands.RunCleanExpiredTokens(
					ctx, tokens, c.Logger(), commands.DefaultIO().Writer,
					int(cmd.Int("days")), cmd.String("format"),
				)
			}),
		},
		{
			Name:  "revoke-sessions",
			Usage: "Log a user out everywhere by revoking all of their refresh tokens",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				tokens, err := c.TokenUseCase()
				if err != nil {
					return err
				}
				return commands.RunRevokeSessions(
					ctx, tokens, c.Logger(), commands.DefaultIO().Writer,
					cmd.String("user-id"), cmd.String("format"),
				)
			}),
		},
	}
}
