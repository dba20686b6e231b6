package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/keywarden/keywarden/cmd/app/commands"
	"github.com/keywarden/keywarden/internal/app"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-dek",
			Usage: "Create a new data encryption key and make it the default",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Unique human-readable DEK name",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return runWithContainer(ctx, func(container *app.Container) error {
					dekUseCase, err := container.DekUseCase(ctx)
					if err != nil {
						return err
					}

					return commands.RunCreateDek(
						ctx,
						dekUseCase,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("name"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "rotate-kek",
			Usage: "Rewrap all data encryption keys under a new KEK",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "new-kek-id",
					Required: true,
					Usage:    "KEK identifier to wrap under",
				},
				&cli.StringFlag{
					Name:  "old-kek-id",
					Usage: "Only rewrap DEKs currently wrapped under this KEK",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return runWithContainer(ctx, func(container *app.Container) error {
					dekUseCase, err := container.DekUseCase(ctx)
					if err != nil {
						return err
					}

					return commands.RunRotateKek(
						ctx,
						dekUseCase,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("new-kek-id"),
						cmd.String("old-kek-id"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
