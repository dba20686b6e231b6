package main

import (
	"context"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/keywarden/keywarden/internal/app"
	"github.com/keywarden/keywarden/internal/config"
)

// getCommands assembles the CLI command tree: server lifecycle, key
// management and client administration.
func getCommands(version string) []*cli.Command {
	return slices.Concat(
		getSystemCommands(version),
		getKeyCommands(),
		getAuthCommands(),
	)
}

// formatFlag is shared by every command that renders a result.
func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// runWithContainer boots the dependency container for a one-shot command and
// tears it down once the action returns.
func runWithContainer(ctx context.Context, action func(*app.Container) error) error {
	container := app.NewContainer(config.Load())
	defer func() { _ = container.Shutdown(ctx) }()

	return action(container)
}
