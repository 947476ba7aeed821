package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/warden/cmd/app/commands"
	"github.com/allisson/warden/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Serve the API, the metrics endpoint and the refresh token purge schedule",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply the embedded schema migrations to DB_CONNECTION_STRING",
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				cfg := c.Config()
				return commands.RunMigrations(c.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			}),
		},
		{
			Name:  "verify-audit-logs",
			Usage: "Check audit log signatures between two dates and report tampered entries",
			Flags: []cli.Flag{
				dateFlag("start-date", "s", "Start"),
				dateFlag("end-date", "e", "End"),
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				auditLogs, err := c.AuditLogUseCase()
				if err != nil {
					return err
				}
				return commands.RunVerifyAuditLogs(
					ctx, auditLogs, c.Logger(), commands.DefaultIO().Writer,
					cmd.String("start-date"), cmd.String("end-date"), cmd.String("format"),
				)
			}),
		},
	}
}

func dateFlag(name, alias, label string) cli.Flag {
	return &cli.StringFlag{
		Name:     name,
		Aliases:  []string{alias},
		Required: true,
		Usage:    label + " date, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS (UTC)",
	}
}
