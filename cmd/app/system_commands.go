package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keywarden/keywarden/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the API and metrics listeners",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply pending database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunMigrations()
			},
		},
		{
			Name:  "gen-keys",
			Usage: "Generate a random development KEK and token signing key",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenKeys(commands.DefaultIO().Writer)
			},
		},
	}
}
