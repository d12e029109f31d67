package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/apimgmt/pkg/audit"
	"github.com/dmitrymomot/apimgmt/pkg/domain"
	"github.com/dmitrymomot/apimgmt/pkg/email"
	"github.com/dmitrymomot/apimgmt/pkg/httpserver"
	"github.com/dmitrymomot/apimgmt/pkg/keysync"
	"github.com/dmitrymomot/apimgmt/pkg/logger"
	"github.com/dmitrymomot/apimgmt/pkg/mongo"
	"github.com/dmitrymomot/apimgmt/pkg/notifications"
	"github.com/dmitrymomot/apimgmt/pkg/opensearch"
	"github.com/dmitrymomot/apimgmt/pkg/pg"
	"github.com/dmitrymomot/apimgmt/pkg/redis"
	"github.com/dmitrymomot/apimgmt/pkg/store/memory"
	"github.com/dmitrymomot/apimgmt/pkg/store/postgres"
	"github.com/dmitrymomot/apimgmt/pkg/store/search"
	"github.com/dmitrymomot/apimgmt/pkg/webhook"
	"github.com/dmitrymomot/apimgmt/svc/apikey"
	"github.com/dmitrymomot/apimgmt/svc/rest"
	"github.com/dmitrymomot/apimgmt/svc/subscription"
)

// repositories is the storage the managers run on.
type repositories struct {
	subscriptions interface {
		subscription.Store
		apikey.SubscriptionFinder
	}
	keys         apikey.Store
	plans        subscription.PlanFinder
	applications subscription.ApplicationStore
	pages        subscription.ContentPageFinder
}

type app struct {
	cfg     appConfig
	log     *slog.Logger
	subs    subscription.Service
	keys    apikey.Service
	apps    rest.ApplicationFinder
	checks  []httpserver.Check
	closers []func()
}

type buildOptions struct {
	seedFile string
	migrate  bool
}

// buildApp connects the configured infrastructure and wires the managers.
// On error every connection opened so far is closed.
func buildApp(ctx context.Context, cfg appConfig, log *slog.Logger, opts buildOptions) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	repos, err := a.storage(ctx, opts)
	if err != nil {
		return nil, err
	}
	trail, err := a.auditTrail(ctx)
	if err != nil {
		return nil, err
	}
	publisher, err := a.keySync(ctx)
	if err != nil {
		return nil, err
	}
	notifier, err := a.notifier()
	if err != nil {
		return nil, err
	}

	a.keys = apikey.NewService(repos.keys, repos.subscriptions, repos.plans, repos.applications,
		apikey.WithAuditLogger(trail),
		apikey.WithNotifier(notifier),
		apikey.WithPublisher(publisher),
		apikey.WithGracePeriod(cfg.RenewGrace),
		apikey.WithLogger(log),
	)

	subOpts := []subscription.ServiceOption{
		subscription.WithAuditLogger(trail),
		subscription.WithNotifier(notifier),
		subscription.WithLogger(log),
	}
	index, err := a.searchIndex(ctx)
	if err != nil {
		return nil, err
	}
	if index != nil {
		subOpts = append(subOpts, subscription.WithIndexer(index))
	}
	a.subs = subscription.NewService(repos.subscriptions, repos.plans, repos.applications, repos.pages, a.keys, subOpts...)
	a.apps = repos.applications
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) storage(ctx context.Context, opts buildOptions) (repositories, error) {
	if a.cfg.StorageDriver == driverPostgres {
		if opts.seedFile != "" {
			return repositories{}, fmt.Errorf("--seed is only supported with STORAGE_DRIVER=%s", driverMemory)
		}
		pool, err := pg.Connect(ctx, a.cfg.Postgres)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, pool.Close)
		a.checks = append(a.checks, httpserver.Check{Name: "postgres", Probe: pg.Healthcheck(pool)})
		if opts.migrate {
			if err := pg.Migrate(ctx, pool, a.cfg.Postgres, postgres.Migrations, a.log); err != nil {
				return repositories{}, err
			}
		}
		db := postgres.New(pool)
		return repositories{db.Subscriptions(), db.APIKeys(), db.Plans(), db.Applications(), db.ContentPages()}, nil
	}

	db := memory.New()
	if opts.seedFile != "" {
		f, err := os.Open(opts.seedFile)
		if err != nil {
			return repositories{}, fmt.Errorf("open seed: %w", err)
		}
		defer f.Close()
		load := db.LoadSeed
		if ext := strings.ToLower(filepath.Ext(opts.seedFile)); ext == ".yaml" || ext == ".yml" {
			load = db.LoadSeedYAML
		}
		if err := load(f); err != nil {
			return repositories{}, err
		}
		a.log.InfoContext(ctx, "seed loaded", slog.String("file", opts.seedFile))
	}
	return repositories{db.Subscriptions(), db.APIKeys(), db.Plans(), db.Applications(), db.ContentPages()}, nil
}

func (a *app) auditTrail(ctx context.Context) (audit.Logger, error) {
	storage := audit.Storage(audit.NewMemoryStorage())
	if a.cfg.AuditDriver == driverMongo {
		client, err := mongo.Connect(ctx, a.cfg.Mongo)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		a.checks = append(a.checks, httpserver.Check{Name: "mongo", Probe: mongo.Healthcheck(client)})
		storage = audit.NewMongoStorage(client.Database(a.cfg.Mongo.Database), a.cfg.AuditCollection)
	}
	return audit.NewLogger(storage, audit.WithUserIDExtractor(domain.ActorUserID)), nil
}

func (a *app) keySync(ctx context.Context) (keysync.Publisher, error) {
	if a.cfg.KeySyncDriver != driverRedis {
		return keysync.NewMemoryBus(), nil
	}
	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.checks = append(a.checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)})
	return keysync.NewRedisPublisher(client, a.cfg.KeySyncChannel, a.log), nil
}

func (a *app) notifier() (*notifications.Manager, error) {
	sender, err := email.NewSender(a.cfg.Email)
	if err != nil {
		return nil, err
	}
	channels := []notifications.Deliverer{notifications.NewEmailDeliverer(sender)}
	if hooks := a.cfg.Webhook; len(hooks.URLs) > 0 {
		client := webhook.NewSender(
			webhook.WithSecret(hooks.Secret),
			webhook.WithMaxRetries(hooks.MaxRetries),
			webhook.WithTimeout(hooks.Timeout),
		)
		channels = append(channels, notifications.NewWebhookDeliverer(client, hooks.URLs...))
	}
	deliverer := notifications.NewMultiDeliverer(a.log, channels...)
	return notifications.NewManager(notifications.NewMemoryStorage(), deliverer, notifications.WithLogger(a.log)), nil
}

// searchIndex returns nil when no OpenSearch cluster is configured.
func (a *app) searchIndex(ctx context.Context) (*search.Index, error) {
	client, err := opensearch.New(ctx, a.cfg.Search)
	if errors.Is(err, opensearch.ErrNotConfigured) {
		a.log.InfoContext(ctx, "full text search disabled", logger.Component("search"))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.checks = append(a.checks, httpserver.Check{Name: "opensearch", Probe: opensearch.Healthcheck(client)})

	index := search.New(client, a.cfg.Search.Index)
	if err := index.Ensure(ctx); err != nil {
		return nil, err
	}
	return index, nil
}
