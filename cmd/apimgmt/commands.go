package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/apimgmt/pkg/httpserver"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/pg"
	"github.com/dmitrymomot/apimgmt/pkg/redis"
	"github.com/dmitrymomot/apimgmt/pkg/store/postgres"
	"github.com/dmitrymomot/apimgmt/svc/rest"
)

func newRootCommand() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Subscription and API key management",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files loaded before the environment is parsed")

	load := func() (appConfig, *slog.Logger, error) {
		cfg, err := loadConfig(envFiles...)
		if err != nil {
			return appConfig{}, nil, err
		}
		return cfg, cfg.logger(), nil
	}

	root.AddCommand(newServeCommand(load), newMigrateCommand(load), newWatchKeysCommand(load), newExportCommand(load))
	return root
}

type configLoader func() (appConfig, *slog.Logger, error)

func newServeCommand(load configLoader) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := buildApp(ctx, cfg, log, opts)
			if err != nil {
				return err
			}
			defer a.close()

			router := rest.NewRouter(a.subs, a.keys, a.apps,
				rest.WithLogger(log),
				rest.WithReadiness(a.checks...),
				rest.WithTrustedIPHeaders(cfg.TrustedIPHeaders...),
			)
			log.InfoContext(ctx, "starting",
				slog.String("storage", cfg.StorageDriver),
				slog.String("audit", cfg.AuditDriver),
				slog.String("keysync", cfg.KeySyncDriver),
			)
			return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, router)
		},
	}
	cmd.Flags().StringVar(&opts.seedFile, "seed", "", "JSON or YAML seed file loaded into the memory store")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func newMigrateCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != driverPostgres {
				return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", driverPostgres)
			}
			ctx := cmd.Context()

			pool, err := pg.Connect(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := pg.Migrate(ctx, pool, cfg.Postgres, postgres.Migrations, log); err != nil {
				return err
			}
			log.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}

// newWatchKeysCommand tails the key change channel, the same feed gateways
// consume to refresh their key caches.
func newWatchKeysCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "watch-keys",
		Short: "Log API key change events published on Redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			client, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()

			sub := keysync.NewRedisPublisher(client, cfg.KeySyncChannel, log)
			log.InfoContext(ctx, "watching key events", slog.String("channel", cfg.KeySyncChannel))
			return sub.Subscribe(ctx, func(ctx context.Context, e keysync.Event) {
				log.InfoContext(ctx, "key event",
					logger.Event(string(e.Type)),
					logger.APIKeyID(e.KeyID),
					logger.ApplicationID(e.Application),
				)
			})
		},
	}
}
