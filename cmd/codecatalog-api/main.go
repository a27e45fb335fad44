package main

import (
	"context"
	"os"

	"github.com/codecatalog/codecatalog/pkg/cmd"
	"github.com/codecatalog/codecatalog/pkg/config"
	"github.com/codecatalog/codecatalog/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9092

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "codecatalog-api",
		Usage:                 "Publish and manage software metadata records",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the external services configuration file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:    "auth-header",
				Usage:   "Header carrying the authenticated user identity",
				Value:   "X-User-Email",
				Sources: cli.EnvVars("AUTH_HEADER"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Code Catalog API")

			cfg := config.LoadOrDefault(command.String("config"))

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				cfg,
				command.String("auth-header"),
			)

			err := api.Start(ctx, command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
