package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keywarden/keywarden/cmd/app/commands"
	"github.com/keywarden/keywarden/internal/app"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-client",
			Usage: "Register a new API client",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Unique human-readable client name",
				},
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Client secret (omit to generate a random one)",
				},
				&cli.StringFlag{
					Name:    "roles",
					Aliases: []string{"r"},
					Usage:   "Comma-separated roles (use '*' for admin)",
				},
				&cli.StringFlag{
					Name:    "permissions",
					Aliases: []string{"p"},
					Usage:   "Comma-separated permissions (use '*' for all)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return runWithContainer(ctx, func(container *app.Container) error {
					clientUseCase, err := container.ClientUseCase()
					if err != nil {
						return err
					}

					return commands.RunCreateClient(
						ctx,
						clientUseCase,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("name"),
						cmd.String("secret"),
						cmd.String("roles"),
						cmd.String("permissions"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
